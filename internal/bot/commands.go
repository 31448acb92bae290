package bot

// Command is the tagged identifier a button or slash command dispatches
// to. Routing happens on the tag, not on the display label, so UI copy can
// change without breaking control flow.
type Command string

const (
	CmdStart          Command = "start"
	CmdLogin          Command = "login"
	CmdLogout         Command = "logout"
	CmdMenu           Command = "menu"
	CmdHideKeyboard   Command = "hide_keyboard"
	CmdCreateTask     Command = "create_task"
	CmdListTasks      Command = "list_tasks"
	CmdFinishTask     Command = "finish_task"
	CmdVoiceTask      Command = "voice_task"
	CmdKPIs           Command = "kpis"
	CmdPrevPage       Command = "prev_page"
	CmdNextPage       Command = "next_page"
	CmdFilterCritical Command = "filter_critical"
	CmdFilterHigh     Command = "filter_high"
	CmdFilterMedium   Command = "filter_medium"
	CmdFilterLow      Command = "filter_low"
)

// Display labels for the reply keyboards. Matching is exact string
// equality against the inbound message text.
const (
	LabelMainMenu     = "📱 Main Menu"
	LabelHideKeyboard = "❌ Hide Keyboard"
	LabelCreateTask   = "➕ Create Task"
	LabelListTasks    = "📋 My Tasks"
	LabelFinishTask   = "✅ Finish Task"
	LabelVoiceTask    = "🎤 Create by Voice"
	LabelKPIs         = "📊 KPIs"
	LabelPrevPage     = "⬅️ Previous"
	LabelNextPage     = "➡️ Next"

	LabelFilterCritical = "🚨 Critical priority"
	LabelFilterHigh     = "🔴 High priority"
	LabelFilterMedium   = "🟠 Medium priority"
	LabelFilterLow      = "🟢 Low priority"
)

// commandBindings maps inbound text to command tags. Order matters: the
// dispatcher checks bindings top to bottom, commands before labels.
var commandBindings = []struct {
	Text string
	Cmd  Command
}{
	{"/start", CmdStart},
	{"/login", CmdLogin},
	{"/logout", CmdLogout},
	{LabelMainMenu, CmdMenu},
	{LabelHideKeyboard, CmdHideKeyboard},
	{LabelCreateTask, CmdCreateTask},
	{LabelListTasks, CmdListTasks},
	{LabelFinishTask, CmdFinishTask},
	{LabelVoiceTask, CmdVoiceTask},
	{LabelKPIs, CmdKPIs},
	{LabelPrevPage, CmdPrevPage},
	{LabelNextPage, CmdNextPage},
	{LabelFilterCritical, CmdFilterCritical},
	{LabelFilterHigh, CmdFilterHigh},
	{LabelFilterMedium, CmdFilterMedium},
	{LabelFilterLow, CmdFilterLow},
}

// resolveCommand matches inbound text against the fixed command set.
func resolveCommand(text string) (Command, bool) {
	for _, b := range commandBindings {
		if b.Text == text {
			return b.Cmd, true
		}
	}
	return "", false
}
