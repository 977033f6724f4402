// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package protocol

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"

	"github.com/rmpd/rmpd/internal/rmpderr"
)

// Server is the MPD TCP listener: one Serve call per spec.md §4.1's
// network-layer supervisor slot, one goroutine per accepted connection.
// It satisfies suture.Service so SupervisorTree.AddNetworkService can
// supervise it directly.
type Server struct {
	Daemon      *Daemon
	Addr        string
	BinaryLimit int
	Logger      *slog.Logger
	OnKill      func() // invoked when a client sends `kill`; typically cancels the root context
}

// NewServer returns a Server ready to Serve.
func NewServer(d *Daemon, addr string, binaryLimit int, logger *slog.Logger, onKill func()) *Server {
	return &Server{Daemon: d, Addr: addr, BinaryLimit: binaryLimit, Logger: logger, OnKill: onKill}
}

// Serve accepts connections until ctx is canceled, per suture.Service.
func (srv *Server) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", srv.Addr)
	if err != nil {
		return err
	}
	srv.log().Info("listening", "addr", srv.Addr)
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		go srv.handleConn(ctx, conn)
	}
}

// log returns a non-nil logger, falling back to slog's default so a Server
// built without one (e.g. in tests) never nil-derefs.
func (srv *Server) log() *slog.Logger {
	if srv.Logger == nil {
		return slog.Default()
	}
	return srv.Logger
}

// lineOrErr is one line read off the wire, or the error that ended reading.
type lineOrErr struct {
	line string
	err  error
}

func (srv *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	remote := conn.RemoteAddr().String()
	log := srv.log().With("remote_addr", remote)
	log.Debug("connection opened")
	defer log.Debug("connection closed")

	sess := NewSession(srv.Daemon, srv.BinaryLimit)
	w := bufio.NewWriter(conn)

	if _, err := w.WriteString(Greeting()); err != nil {
		return
	}
	if err := w.Flush(); err != nil {
		return
	}

	lines := make(chan lineOrErr)
	go func() {
		scanner := bufio.NewScanner(conn)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			lines <- lineOrErr{line: strings.TrimSuffix(scanner.Text(), "\r")}
		}
		err := scanner.Err()
		if err == nil {
			err = errClientEOF
		}
		lines <- lineOrErr{err: err}
	}()

	var pendingList []Command
	var listOKMode bool
	inList := false

	for {
		le, ok := <-lines
		if !ok || le.err != nil {
			return
		}
		line := strings.TrimSpace(le.line)
		if line == "" {
			continue
		}

		if inList {
			if line == commandListEnd {
				inList = false
				if !srv.runCommandList(connCtx, sess, pendingList, listOKMode, w) {
					return
				}
				pendingList = nil
				continue
			}
			cmd, err := parseLine(line)
			if err != nil {
				w.WriteString(ackForError(err, len(pendingList), ""))
				w.Flush()
				inList = false
				pendingList = nil
				continue
			}
			pendingList = append(pendingList, cmd)
			continue
		}

		switch line {
		case commandListBegin:
			inList, listOKMode, pendingList = true, false, nil
			continue
		case commandListOKBegin:
			inList, listOKMode, pendingList = true, true, nil
			continue
		}

		cmd, err := parseLine(line)
		if err != nil {
			w.WriteString(ackForError(err, 0, ""))
			w.Flush()
			continue
		}

		if cmd.Name == "idle" {
			if !srv.runIdle(connCtx, sess, cmd, lines, w) {
				return
			}
			continue
		}
		if cmd.Name == "noidle" {
			// no idle in progress at top level; MPD treats a bare noidle as a no-op
			continue
		}

		resp, err := sess.Handle(connCtx, cmd)
		if !srv.writeResult(w, cmd, resp, err) {
			return
		}
	}
}

var errClientEOF = errors.New("client closed connection")

// writeResult renders one command's outcome and reports whether the
// connection should stay open.
func (srv *Server) writeResult(w *bufio.Writer, cmd Command, resp *Response, err error) bool {
	if err != nil {
		if errors.Is(err, ErrCloseConnection) {
			return false
		}
		if errors.Is(err, ErrKillDaemon) {
			if srv.OnKill != nil {
				srv.OnKill()
			}
			return false
		}
		srv.log().Debug("command failed", "command", cmd.Name, "error", err)
		w.WriteString(ackForError(err, 0, cmd.Name))
		w.Flush()
		return true
	}
	w.WriteString(resp.String())
	w.Write(resp.Binary)
	w.WriteString("OK\n")
	w.Flush()
	return true
}

// runCommandList executes a batch of buffered commands, stopping at the
// first failure (ACK carries that command's index, per spec.md §4.8).
// Returns false if the connection should close.
func (srv *Server) runCommandList(ctx context.Context, sess *Session, cmds []Command, okMode bool, w *bufio.Writer) bool {
	for i, cmd := range cmds {
		resp, err := sess.Handle(ctx, cmd)
		if err != nil {
			if errors.Is(err, ErrCloseConnection) {
				return false
			}
			if errors.Is(err, ErrKillDaemon) {
				if srv.OnKill != nil {
					srv.OnKill()
				}
				return false
			}
			srv.log().Debug("command list failed", "command", cmd.Name, "index", i, "error", err)
			w.WriteString(ackForError(err, i, cmd.Name))
			w.Flush()
			return true
		}
		w.WriteString(resp.String())
		w.Write(resp.Binary)
		if okMode {
			w.WriteString("list_OK\n")
		}
	}
	w.WriteString("OK\n")
	w.Flush()
	return true
}

// runIdle executes `idle` concurrently with the connection's read loop so a
// following `noidle` line can cancel it. lines keeps delivering subsequent
// input while the idle call blocks; any line other than noidle is rejected
// with an ACK (matching real MPD, which only accepts noidle while idling).
// Returns false if the connection should close.
func (srv *Server) runIdle(ctx context.Context, sess *Session, cmd Command, lines <-chan lineOrErr, w *bufio.Writer) bool {
	idleCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		resp *Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := sess.Handle(idleCtx, cmd)
		done <- result{resp, err}
	}()

	for {
		select {
		case res := <-done:
			return srv.writeResult(w, cmd, res.resp, res.err)
		case le, ok := <-lines:
			if !ok || le.err != nil {
				cancel()
				<-done
				return false
			}
			line := strings.TrimSpace(le.line)
			if line == "noidle" {
				cancel()
				res := <-done
				return srv.writeResult(w, cmd, res.resp, res.err)
			}
			w.WriteString(ackLine(rmpderr.Argument.ACKCode(), 0, "", "only noidle is accepted while idling"))
			w.Flush()
		}
	}
}
