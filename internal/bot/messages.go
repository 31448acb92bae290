package bot

// User-facing message text. Kept in one place so tests can assert against
// the exact strings.
const (
	MsgWelcome       = "Welcome to the sprint tracker. Use /login to sign in."
	MsgMainMenu      = "What would you like to do?"
	MsgBye           = "See you soon! Type /start to talk to the bot again."
	MsgLoginRequired = "🔒 Login required. Use /login first."

	MsgEnterPassword     = "Enter your password:"
	MsgUserNotRegistered = "❌ User not registered."
	MsgIncorrectPassword = "❌ Incorrect password. Try again:"
	MsgLoginUnavailable  = "⚠️ Login is unavailable right now. Please try again later."
	MsgNotLoggedIn       = "You are not logged in."
	MsgLoggedOut         = "👋 Logged out."

	MsgEnterTaskTitle       = "Please enter the task title:"
	MsgEnterTaskDescription = "Enter the task description:"
	MsgSelectPriority       = "Select the task priority:"
	MsgSelectType           = "Select the task type:"
	MsgEnterStoryPoints     = "Enter the story points (1-13):"
	MsgEnterEstimatedHours  = "Enter the estimated hours:"
	MsgEnterActualHours     = "Enter the actual hours spent so far:"
	MsgSelectUser           = "Select the user assigned to the task:"
	MsgSelectSprint         = "Select the sprint for the task:"

	MsgInvalidStoryPoints    = "Please enter a number between 1 and 13:"
	MsgInvalidEstimatedHours = "Please enter a number greater than 0:"
	MsgInvalidActualHours    = "Please enter a number of 0 or more:"
	MsgInvalidUser           = "Invalid user. Please select a user from the list:"
	MsgInvalidSprint         = "Invalid sprint. Please select a sprint from the list:"

	MsgNoUsersAvailable   = "No users available. Contact your administrator."
	MsgNoSprintsAvailable = "No sprints available. Contact your administrator."
	MsgErrorCreatingTask  = "Error creating task: "

	MsgNoTasksAssigned  = "You have no tasks assigned."
	MsgTasksUnavailable = "⚠️ Could not load your tasks right now. Please try again."
	MsgFirstPage        = "You are already on the first page."
	MsgLastPage         = "You are already on the last page."
	MsgListTooLong      = "The task list is too long to display. Try a priority filter instead."

	MsgSelectTaskToFinish   = "Select the task to complete:"
	MsgNoOpenTasks          = "You have no open tasks."
	MsgInvalidFinishTask    = "Invalid task. Please select a task from the list:"
	MsgErrorCompletingTask  = "Error completing task: "

	MsgSendVoiceNote = "🎤 Send a voice note describing the task: title, description, priority, type, assignee and sprint."
	MsgVoiceWorking  = "🎤 Processing voice note..."
	MsgVoiceFailed   = "❌ Could not process the voice note. Please try again or create the task manually."
)
