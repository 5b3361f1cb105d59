//go:build !linux

package client

import "errors"

func setRawMode(fd int) (func(), error) {
	return nil, errors.New("raw terminal mode is only supported on linux")
}
