package artifact

import (
	"fmt"
	"net"
	"runtime"
	"strconv"

	billy "github.com/go-git/go-billy/v5"
	nfs "github.com/willscott/go-nfs"
	nfshelper "github.com/willscott/go-nfs/helpers"
)

// Server exports a filesystem over NFSv3.
type Server struct {
	listener net.Listener
	port     int
	done     chan error
}

// NewServer starts serving fs on addr. An addr with port 0 picks an
// ephemeral port.
func NewServer(fs billy.Filesystem, addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("nfs listen: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port

	handler := nfshelper.NewNullAuthHandler(fs)
	cached := nfshelper.NewCachingHandler(handler, 1024)

	s := &Server{listener: listener, port: port, done: make(chan error, 1)}
	go func() {
		s.done <- nfs.Serve(listener, cached)
	}()
	return s, nil
}

// Port returns the TCP port the server listens on.
func (s *Server) Port() int {
	return s.port
}

// Done delivers the error that ended the serve loop.
func (s *Server) Done() <-chan error {
	return s.done
}

// Close stops the server.
func (s *Server) Close() error {
	return s.listener.Close()
}

// MountCommand returns the command line that mounts a server on port at
// mountpoint, read-only.
func MountCommand(goos string, port int, mountpoint string) ([]string, error) {
	p := strconv.Itoa(port)
	var opts string
	switch goos {
	case "darwin":
		opts = "port=" + p + ",mountport=" + p + ",vers=3,tcp,locallocks,noresvport,rdonly"
	case "linux":
		opts = "port=" + p + ",mountport=" + p + ",vers=3,tcp,local_lock=all,nolock,ro"
	default:
		return nil, fmt.Errorf("unsupported OS: %s", goos)
	}
	return []string{"sudo", "mount", "-t", "nfs", "-o", opts, "localhost:/", mountpoint}, nil
}

// HostMountCommand is MountCommand for the running OS.
func HostMountCommand(port int, mountpoint string) ([]string, error) {
	return MountCommand(runtime.GOOS, port, mountpoint)
}
