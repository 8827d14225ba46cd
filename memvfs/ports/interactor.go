package ports

// Interactor is where an interactive session writes what the user sees.
type Interactor interface {
	Prompt(prompt string)
	Output(message string)
	Warning(message string)
	Error(message string, err error)
}
