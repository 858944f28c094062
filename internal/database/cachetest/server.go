// Package cachetest runs an in-process valkey stand-in for tests. It answers
// the RESP2 subset the cache layer issues and records every command it sees.
package cachetest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"
)

var errProtocol = errors.New("cachetest: malformed command")

type Message struct {
	Channel string
	Payload string
}

type Server struct {
	listener net.Listener
	wg       sync.WaitGroup

	mu        sync.Mutex
	conns     map[net.Conn]struct{}
	data      map[string]string
	ttls      map[string]int64
	commands  [][]string
	published []Message
	failures  map[string]string
	closed    bool
}

func NewServer(t testing.TB) *Server {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &Server{
		listener: listener,
		conns:    make(map[net.Conn]struct{}),
		data:     make(map[string]string),
		ttls:     make(map[string]int64),
		failures: make(map[string]string),
	}

	s.wg.Add(1)
	go s.accept()
	t.Cleanup(s.Close)

	return s
}

func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Client dials the server with the options it can answer: RESP2, no client
// side caching, a single connection and no CLIENT SETINFO.
func (s *Server) Client(t testing.TB) valkey.Client {
	t.Helper()

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{s.Addr()},
		ForceSingleClient: true,
		DisableCache:      true,
		AlwaysRESP2:       true,
		DisableRetry:      true,
		ClientSetInfo:     valkey.DisableClientSetInfo,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client
}

func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	_ = s.listener.Close()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Fail makes every later command with this name answer with message as a
// valkey error.
func (s *Server) Fail(command, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[strings.ToUpper(command)] = message
}

func (s *Server) SetValue(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

func (s *Server) Value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	return value, ok
}

// TTL is the EX seconds the key was last SET with, or zero.
func (s *Server) TTL(key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ttls[key]
}

// Commands lists every command received except the connection handshake and
// keepalive pings.
func (s *Server) Commands() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	commands := make([][]string, len(s.commands))
	for i, cmd := range s.commands {
		commands[i] = append([]string(nil), cmd...)
	}
	return commands
}

// CommandNames lists the upper-cased name of each recorded command.
func (s *Server) CommandNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.commands))
	for _, cmd := range s.commands {
		names = append(names, strings.ToUpper(cmd[0]))
	}
	return names
}

func (s *Server) Published() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.published...)
}

func (s *Server) accept() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	for {
		args, err := readCommand(reader)
		if err != nil {
			return
		}

		writer.WriteString(s.handle(args))
		if reader.Buffered() == 0 {
			if err := writer.Flush(); err != nil {
				return
			}
		}
	}
}

func (s *Server) handle(args []string) string {
	name := strings.ToUpper(args[0])

	switch name {
	case "HELLO":
		return errorReply("ERR unknown command 'HELLO'")
	case "PING":
		return "+PONG\r\n"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.commands = append(s.commands, args)
	if message, ok := s.failures[name]; ok {
		return errorReply(message)
	}

	switch name {
	case "SET":
		if len(args) < 3 {
			return errorReply("ERR wrong number of arguments for 'set' command")
		}
		s.data[args[1]] = args[2]
		delete(s.ttls, args[1])
		for i := 3; i+1 < len(args); i++ {
			if strings.ToUpper(args[i]) == "EX" {
				seconds, err := strconv.ParseInt(args[i+1], 10, 64)
				if err != nil {
					return errorReply("ERR value is not an integer or out of range")
				}
				s.ttls[args[1]] = seconds
			}
		}
		return "+OK\r\n"
	case "GET":
		if len(args) != 2 {
			return errorReply("ERR wrong number of arguments for 'get' command")
		}
		value, ok := s.data[args[1]]
		if !ok {
			return "$-1\r\n"
		}
		return bulkReply(value)
	case "DEL":
		removed := 0
		for _, key := range args[1:] {
			if _, ok := s.data[key]; ok {
				delete(s.data, key)
				delete(s.ttls, key)
				removed++
			}
		}
		return fmt.Sprintf(":%d\r\n", removed)
	case "PUBLISH":
		if len(args) != 3 {
			return errorReply("ERR wrong number of arguments for 'publish' command")
		}
		s.published = append(s.published, Message{Channel: args[1], Payload: args[2]})
		return ":0\r\n"
	case "FLUSHDB":
		s.data = make(map[string]string)
		s.ttls = make(map[string]int64)
		return "+OK\r\n"
	case "SELECT":
		return "+OK\r\n"
	}

	return errorReply(fmt.Sprintf("ERR unknown command '%s'", args[0]))
}

func readCommand(r *bufio.Reader) ([]string, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	if len(line) < 2 || line[0] != '*' {
		return nil, errProtocol
	}

	count, err := strconv.Atoi(line[1:])
	if err != nil || count < 1 {
		return nil, errProtocol
	}

	args := make([]string, 0, count)
	for range count {
		header, err := readLine(r)
		if err != nil {
			return nil, err
		}
		if len(header) < 2 || header[0] != '$' {
			return nil, errProtocol
		}

		size, err := strconv.Atoi(header[1:])
		if err != nil || size < 0 {
			return nil, errProtocol
		}

		buf := make([]byte, size+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		args = append(args, string(buf[:size]))
	}

	return args, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func bulkReply(value string) string {
	return fmt.Sprintf("$%d\r\n%s\r\n", len(value), value)
}

func errorReply(message string) string {
	return "-" + message + "\r\n"
}
