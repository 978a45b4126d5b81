package terminal

import "strings"

// Kind identifies a REPL command
type Kind int

const (
	Empty Kind = iota
	Ask
	Upload
	History
	Current
	Export
	Clear
	Help
	Exit
	Unknown
)

// Command is one parsed line of input
type Command struct {
	Kind Kind
	Arg  string
}

var commands = map[string]Kind{
	"/ask":     Ask,
	"/upload":  Upload,
	"/history": History,
	"/current": Current,
	"/export":  Export,
	"/clear":   Clear,
	"/help":    Help,
	"/exit":    Exit,
	"/quit":    Exit,
}

// ParseCommand turns a line into a command. Lines that do not start with
// a slash are questions.
func ParseCommand(line string) Command {
	line = strings.TrimSpace(line)

	switch {
	case line == "":
		return Command{Kind: Empty}
	case line == "exit" || line == "quit":
		return Command{Kind: Exit}
	case !strings.HasPrefix(line, "/"):
		return Command{Kind: Ask, Arg: line}
	}

	name, arg, _ := strings.Cut(line, " ")
	kind, ok := commands[strings.ToLower(name)]
	if !ok {
		return Command{Kind: Unknown, Arg: name}
	}

	return Command{Kind: kind, Arg: strings.Trim(strings.TrimSpace(arg), `"'`)}
}
