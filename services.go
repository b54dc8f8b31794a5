package main

import (
	"errors"
	"os/exec"
	"runtime"
	"strings"
)

var openURL = defaultOpenURL

func defaultOpenURL(target string) error {
	return defaultOpenURLForOS(runtime.GOOS, target)
}

func defaultOpenURLForOS(goos string, target string) error {
	if target == "" {
		return errors.New("empty url")
	}
	cmdName, args := openCommandForOS(goos, target)
	if cmdName == "" {
		return errors.New("unsupported platform")
	}
	cmd := exec.Command(cmdName, args...)
	return cmd.Start()
}

func openCommandForOS(goos string, target string) (string, []string) {
	switch goos {
	case "unsupported":
		return "", nil
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return "xdg-open", []string{target}
	}
}

type clipboardCommand struct {
	name string
	args []string
}

var clipboardCommands = func(goos string) []clipboardCommand {
	switch goos {
	case "darwin":
		return []clipboardCommand{{name: "pbcopy"}}
	case "windows":
		return []clipboardCommand{{name: "clip"}}
	default:
		return []clipboardCommand{
			{name: "wl-copy"},
			{name: "xclip", args: []string{"-selection", "clipboard"}},
			{name: "xsel", args: []string{"--clipboard", "--input"}},
		}
	}
}

var clipboardRun = func(cmdName string, args []string, input string) error {
	cmd := exec.Command(cmdName, args...)
	cmd.Stdin = strings.NewReader(input)
	return cmd.Run()
}

func copyToClipboard(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("nothing to copy")
	}
	commands := clipboardCommands(runtime.GOOS)
	if len(commands) == 0 {
		return errors.New("no clipboard command available")
	}
	var lastErr error
	for _, command := range commands {
		if err := clipboardRun(command.name, command.args, value); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
