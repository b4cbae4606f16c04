package edge

import "errors"

// Sentinel kinds for edge errors.
var (
	ErrCertificate = errors.New("certificate load failed")
	ErrNoHostnames = errors.New("no hostnames configured")
	ErrListen      = errors.New("edge listen failed")
)
