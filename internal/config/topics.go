package config

const (
	// TopicAnalyzeTask carries one message per submitted job; consuming it
	// runs the background analysis pipeline for that job.
	TopicAnalyzeTask = "analyze.task"

	// TopicAnalyzeProgress carries retry progress and terminal outcome
	// notifications for the UI layer.
	TopicAnalyzeProgress = "analyze.progress"
)
