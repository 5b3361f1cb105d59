//go:build linux

package client

import "golang.org/x/sys/unix"

// setRawMode switches the terminal to byte-at-a-time input and returns a
// function restoring the previous settings.
func setRawMode(fd int) (func(), error) {
	terminalSettings, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, err
	}
	savedTerminalSettings := *terminalSettings
	terminalSettings.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	terminalSettings.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	terminalSettings.Cflag &^= unix.CSIZE | unix.PARENB
	terminalSettings.Cflag |= unix.CS8
	terminalSettings.Oflag |= unix.OPOST | unix.ONLCR

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, terminalSettings); err != nil {
		return nil, err
	}
	return func() {
		unix.IoctlSetTermios(fd, unix.TCSETS, &savedTerminalSettings)
	}, nil
}
