package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nibzard/rxtodo-go/internal/config"
)

var completionCommands = []string{
	"tui", "ls", "add", "edit", "rm", "mv", "done", "undone",
	"doctor", "tail", "completion", "config", "version", "help",
}

var completionFlags = []string{
	"-store", "-store-path", "-dsn",
	"-s3-bucket", "-s3-region", "-s3-endpoint", "-s3-prefix", "-s3-path-style",
	"-log-dir", "-log-level", "-log-format", "-log-timestamps", "-log-caller",
	"-metrics-addr", "-help", "-version",
}

// completionCommand prints a completion script for the given shell.
func completionCommand(_ *config.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: rxtodo completion <bash|zsh|fish|powershell>")
	}

	var script string
	switch strings.ToLower(args[0]) {
	case "bash":
		script = bashCompletion()
	case "zsh":
		script = zshCompletion()
	case "fish":
		script = fishCompletion()
	case "powershell", "pwsh":
		script = powershellCompletion()
	default:
		return fmt.Errorf("unsupported shell: %s", args[0])
	}
	fmt.Print(script)
	return nil
}

func bashCompletion() string {
	return fmt.Sprintf(`# rxtodo bash completion
_rxtodo() {
    local cur prev
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    case "$prev" in
        -store)
            COMPREPLY=( $(compgen -W "%s" -- "$cur") )
            return 0
            ;;
        -log-level)
            COMPREPLY=( $(compgen -W "debug info warn error" -- "$cur") )
            return 0
            ;;
        -log-format)
            COMPREPLY=( $(compgen -W "text json logfmt" -- "$cur") )
            return 0
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh fish powershell" -- "$cur") )
            return 0
            ;;
        config)
            COMPREPLY=( $(compgen -W "example show" -- "$cur") )
            return 0
            ;;
    esac

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "%s" -- "$cur") )
        return 0
    fi
    COMPREPLY=( $(compgen -W "%s" -- "$cur") )
}
complete -F _rxtodo rxtodo
`, strings.Join(config.Drivers(), " "), strings.Join(completionFlags, " "), strings.Join(completionCommands, " "))
}

func zshCompletion() string {
	return fmt.Sprintf(`#compdef rxtodo
# rxtodo zsh completion

_rxtodo() {
    local -a commands
    commands=(%s)

    _arguments -C \
        '-store[store driver]:driver:(%s)' \
        '-store-path[file or sqlite path]:path:_files' \
        '-log-level[log level]:level:(debug info warn error)' \
        '-log-format[log format]:format:(text json logfmt)' \
        '1:command:->command' \
        '*::arg:->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                completion) _values 'shell' bash zsh fish powershell ;;
                config) _values 'config command' example show ;;
            esac
            ;;
    esac
}

_rxtodo "$@"
`, strings.Join(completionCommands, " "), strings.Join(config.Drivers(), " "))
}

func fishCompletion() string {
	var b strings.Builder
	b.WriteString("# rxtodo fish completion\n")
	fmt.Fprintf(&b, "complete -c rxtodo -f -n '__fish_use_subcommand' -a '%s'\n", strings.Join(completionCommands, " "))
	fmt.Fprintf(&b, "complete -c rxtodo -o store -x -a '%s'\n", strings.Join(config.Drivers(), " "))
	b.WriteString("complete -c rxtodo -o log-level -x -a 'debug info warn error'\n")
	b.WriteString("complete -c rxtodo -o log-format -x -a 'text json logfmt'\n")
	b.WriteString("complete -c rxtodo -f -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish powershell'\n")
	b.WriteString("complete -c rxtodo -f -n '__fish_seen_subcommand_from config' -a 'example show'\n")
	return b.String()
}

func powershellCompletion() string {
	quoted := make([]string, len(completionCommands))
	for i, c := range completionCommands {
		quoted[i] = "'" + c + "'"
	}
	return fmt.Sprintf(`# rxtodo PowerShell completion
Register-ArgumentCompleter -Native -CommandName rxtodo -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)
    @(%s) | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
    }
}
`, strings.Join(quoted, ", "))
}
