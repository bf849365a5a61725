package cmd

// CommandError represents a command execution error, rendered over the
// wire as a RESP simple error (`-<Message>\r\n`).
type CommandError struct {
	Message string
}

func (e *CommandError) Error() string {
	return e.Message
}
