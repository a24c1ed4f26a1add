// Package clipboard copies rendered reports to the system clipboard.
package clipboard

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// command is one clipboard tool invocation that reads text from stdin.
type command []string

// CopyText copies plain text to the system clipboard.
func CopyText(text string) error {
	tools, err := textTools(runtime.GOOS)
	if err != nil {
		return err
	}

	var tried []string
	for _, tool := range tools {
		tried = append(tried, tool[0])
		if !isCommandAvailable(tool[0]) {
			continue
		}
		cmd := exec.Command(tool[0], tool[1:]...)
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err == nil {
			return nil
		}
	}

	return fmt.Errorf("no suitable clipboard tool found (tried: %s)", strings.Join(tried, ", "))
}

// textTools lists the clipboard tools for goos in order of preference.
func textTools(goos string) ([]command, error) {
	switch goos {
	case "linux", "freebsd", "openbsd":
		return []command{
			{"wl-copy"},                          // Wayland
			{"xclip", "-selection", "clipboard"}, // X11
			{"xsel", "--clipboard", "--input"},   // X11 alternative
		}, nil
	case "darwin":
		return []command{{"pbcopy"}}, nil
	case "windows":
		return []command{{"clip.exe"}}, nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

func isCommandAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
