// Package fdpass passes a single file descriptor plus an accompanying byte
// payload across an AF_UNIX socket using SCM_RIGHTS ancillary data, the
// mechanism the CLI and the privileged package-manager process use to hand
// each other an already-open fd (bundle images, log pipes) without either
// side needing path-based access to the other's open files.
package fdpass

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Result is what RecvFdWithPayload hands back: the
// received fd, the payload bytes actually read, and whether either the
// ancillary control data or the payload was truncated.
type Result struct {
	FD        int
	Payload   []byte
	Truncated bool
}

// SendFdWithPayload sends fd and payload over socketFd in one or more
// sendmsg calls, carrying fd as SCM_RIGHTS ancillary data on the first
// message. It loops until the full payload has been written and the fd has
// been transmitted at least once, retrying transparently on EINTR.
func SendFdWithPayload(socketFd int, fd int, payload []byte) error {
	if socketFd < 0 {
		return errors.New("fdpass: invalid socket file descriptor")
	}

	oob := unix.UnixRights(fd)
	var totalSent int
	fdSent := false

	for totalSent < len(payload) || !fdSent {
		chunk := payload[totalSent:]
		var sendOOB []byte
		if !fdSent {
			sendOOB = oob
		}

		n, _, err := sendmsgRetryEINTR(socketFd, chunk, sendOOB)
		if err != nil {
			return fmt.Errorf("fdpass: sendmsg: %w", err)
		}

		fdSent = true
		totalSent += n

		if len(payload) == 0 {
			break
		}
	}

	return nil
}

// sendmsgRetryEINTR wraps unix.SendmsgN, retrying on EINTR.
func sendmsgRetryEINTR(socketFd int, p, oob []byte) (n int, oobn int, err error) {
	for {
		n, oobn, err = unix.SendmsgN(socketFd, p, oob, nil, 0)
		if err == unix.EINTR {
			continue
		}
		return n, oobn, err
	}
}

// RecvFdWithPayload reads up to bufSize bytes of payload plus exactly one
// fd from socketFd. Truncated is set if the ancillary control data did not
// fit, if the kernel reported MSG_TRUNC, or if the payload filled bufSize
// exactly and FIONREAD reports more bytes still queued.
func RecvFdWithPayload(socketFd int, bufSize int) (Result, error) {
	if socketFd < 0 {
		return Result{}, errors.New("fdpass: invalid file descriptor")
	}

	buf := make([]byte, bufSize)
	oob := make([]byte, unix.CmsgSpace(4)) // one int fd

	n, oobn, flags, _, err := recvmsgRetryEINTR(socketFd, buf, oob)
	if err != nil {
		return Result{}, fmt.Errorf("fdpass: recvmsg: %w", err)
	}
	if n == 0 && oobn == 0 {
		return Result{}, errors.New("fdpass: connection closed")
	}

	receivedFD := -1
	ctrlTruncated := flags&unix.MSG_CTRUNC != 0

	if !ctrlTruncated && oobn > 0 {
		cmsgs, err := unix.ParseSocketControlMessage(oob[:oobn])
		if err != nil {
			return Result{}, fmt.Errorf("fdpass: parse control message: %w", err)
		}
		for _, cmsg := range cmsgs {
			if cmsg.Header.Level != unix.SOL_SOCKET || cmsg.Header.Type != unix.SCM_RIGHTS {
				continue
			}
			fds, err := unix.ParseUnixRights(&cmsg)
			if err != nil {
				return Result{}, fmt.Errorf("fdpass: parse unix rights: %w", err)
			}
			if len(fds) > 0 {
				receivedFD = fds[0]
			}
		}
	}

	if ctrlTruncated {
		if receivedFD != -1 {
			unix.Close(receivedFD)
		}
		return Result{}, errors.New("fdpass: control data truncated")
	}

	if receivedFD == -1 {
		return Result{}, errors.New("fdpass: no file descriptor received")
	}

	truncated := flags&unix.MSG_TRUNC != 0
	if !truncated && n == bufSize {
		avail, err := ioctlFIONREAD(socketFd)
		if err != nil {
			unix.Close(receivedFD)
			return Result{}, fmt.Errorf("fdpass: FIONREAD: %w", err)
		}
		if avail > 0 {
			truncated = true
		}
	}

	return Result{FD: receivedFD, Payload: buf[:n], Truncated: truncated}, nil
}

// recvmsgRetryEINTR wraps unix.Recvmsg, retrying on EINTR.
func recvmsgRetryEINTR(socketFd int, p, oob []byte) (n, oobn, flags int, from unix.Sockaddr, err error) {
	for {
		n, oobn, flags, from, err = unix.Recvmsg(socketFd, p, oob, 0)
		if err == unix.EINTR {
			continue
		}
		return n, oobn, flags, from, err
	}
}

func ioctlFIONREAD(fd int) (int, error) {
	return unix.IoctlGetInt(fd, unix.FIONREAD)
}
