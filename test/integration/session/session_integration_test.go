// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package session_test

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/visitant/internal/command"
	"github.com/holomush/visitant/internal/protocol"
	"github.com/holomush/visitant/internal/session"
	"github.com/holomush/visitant/internal/timing"
	"github.com/holomush/visitant/internal/trace"
	"github.com/holomush/visitant/internal/transport"
)

// gridServer is an in-process stand-in for the server side of the protocol.
type gridServer struct {
	conn  *net.UDPConn
	codec *protocol.Codec

	mu       sync.Mutex
	received []protocol.Action
	times    []time.Time
	peer     net.Addr
}

func newGridServer() *gridServer {
	conn, err := transport.Listen("127.0.0.1:0")
	Expect(err).NotTo(HaveOccurred())
	codec, err := protocol.NewCodec()
	Expect(err).NotTo(HaveOccurred())

	s := &gridServer{conn: conn, codec: codec}
	go s.serve()
	return s
}

func (s *gridServer) serve() {
	buf := make([]byte, protocol.MaxDatagramSize)
	for {
		n, from, err := s.conn.ReadFrom(buf)
		if err != nil {
			return
		}
		a, err := s.codec.DecodeAction(buf[:n])
		if err != nil {
			continue
		}
		s.mu.Lock()
		s.received = append(s.received, a)
		s.times = append(s.times, time.Now())
		s.peer = from
		s.mu.Unlock()
	}
}

func (s *gridServer) actions() []protocol.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.Action, len(s.received))
	copy(out, s.received)
	return out
}

func (s *gridServer) countOf(kind protocol.Kind) int {
	n := 0
	for _, a := range s.actions() {
		if a.ActionKind() == kind {
			n++
		}
	}
	return n
}

func (s *gridServer) firstTime(kind protocol.Kind) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.received {
		if a.ActionKind() == kind {
			return s.times[i]
		}
	}
	return time.Time{}
}

func (s *gridServer) sendRaw(b []byte) {
	s.mu.Lock()
	peer := s.peer
	s.mu.Unlock()
	Expect(peer).NotTo(BeNil())
	_, err := s.conn.WriteTo(b, peer)
	Expect(err).NotTo(HaveOccurred())
}

func (s *gridServer) send(ev protocol.Event) {
	b, err := s.codec.EncodeEvent(ev)
	Expect(err).NotTo(HaveOccurred())
	s.sendRaw(b)
}

func (s *gridServer) port() int {
	return s.conn.LocalAddr().(*net.UDPAddr).Port
}

func (s *gridServer) close() {
	_ = s.conn.Close()
}

// client wires the real receiver, reader and engine the way the binary does.
type client struct {
	rec    *trace.Recorder
	stdin  *io.PipeWriter
	cancel context.CancelFunc
	done   chan session.Result
}

func startClient(server *gridServer, mode timing.RunMode, behavior timing.ModePolicy) *client {
	conn, err := transport.Listen("127.0.0.1:0")
	Expect(err).NotTo(HaveOccurred())
	addr, err := transport.ResolveServer("127.0.0.1", server.port())
	Expect(err).NotTo(HaveOccurred())
	codec, err := protocol.NewCodec()
	Expect(err).NotTo(HaveOccurred())

	rec := &trace.Recorder{}
	commands := make(chan command.Command, 16)
	events := make(chan protocol.Event, 16)
	stdinR, stdinW := io.Pipe()

	engine := session.NewEngine(session.Config{
		FirstName:    "Test",
		LastName:     "User",
		Password:     "password",
		URI:          "http://127.0.0.1:9000/",
		Mode:         mode,
		Behavior:     behavior,
		AutoLogin:    behavior.AutoLogin,
		PollInterval: 10 * time.Millisecond,
	}, transport.NewSender(conn, addr, codec), rec, commands, events)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = transport.NewReceiver(conn, codec, events).Run(ctx) }()
	go func() { _ = command.NewReader(stdinR, commands, rec).Run(ctx) }()

	c := &client{rec: rec, stdin: stdinW, cancel: cancel, done: make(chan session.Result, 1)}
	go func() {
		res, _ := engine.Run(ctx)
		cancel()
		c.done <- res
	}()
	return c
}

func (c *client) write(lines string) {
	_, err := io.WriteString(c.stdin, lines)
	Expect(err).NotTo(HaveOccurred())
}

func (c *client) result() session.Result {
	var res session.Result
	Eventually(c.done, 3*time.Second).Should(Receive(&res))
	return res
}

func (c *client) stop() {
	c.cancel()
	_ = c.stdin.Close()
}

func (c *client) count(sys, sig string) func() int {
	return func() int { return c.rec.Count(sys, sig) }
}

var _ = Describe("Session over UDP", func() {
	var (
		server *gridServer
		c      *client
	)

	BeforeEach(func() {
		c = nil
		server = newGridServer()
	})

	AfterEach(func() {
		if c != nil {
			c.stop()
		}
		server.close()
	})

	Describe("Login lifecycle", func() {
		BeforeEach(func() {
			c = startClient(server, timing.Standard, timing.Standard.Policy())
			Eventually(func() int { return server.countOf(protocol.KindLoginRequest) }).Should(Equal(1))
		})

		It("confirms presence exactly once after login", func() {
			server.send(protocol.LoginResponse{FirstName: "Test", LastName: "User"})

			Eventually(c.count("Login", "Success")).Should(Equal(1))
			Eventually(func() int { return server.countOf(protocol.KindAgentUpdate) }).Should(Equal(1))
			Consistently(func() int { return server.countOf(protocol.KindAgentUpdate) }, 100*time.Millisecond).Should(Equal(1))
		})

		It("deduplicates consecutive presence updates", func() {
			server.send(protocol.PresenceUpdate{Region: "Plaza"})
			server.send(protocol.PresenceUpdate{Region: "Plaza"})
			server.send(protocol.ChatFromServer{FromName: "Ann", Message: "hi"})
			server.send(protocol.PresenceUpdate{Region: "Plaza"})

			Eventually(c.count("Chat", "Heard")).Should(Equal(1))
			Eventually(c.count("Territory", "Impression")).Should(Equal(2))
		})

		It("keeps receiving after a malformed datagram", func() {
			server.sendRaw([]byte("definitely not cbor"))
			server.send(protocol.ChatFromServer{FromName: "Bob", Message: "still here"})

			Eventually(c.count("Chat", "Heard")).Should(Equal(1))
			Expect(c.rec.Filter("Chat", "Heard")[0].Val).To(Equal("From: Bob, Msg: still here"))
		})

		It("ends the session when the server closes", func() {
			server.send(protocol.DisableServer{})

			res := c.result()
			Expect(res.Reason).To(Equal(session.ReasonServerDisabled))
			Expect(c.count("Alert", "Heard")()).To(Equal(1))
		})

		It("logs out on operator request", func() {
			server.send(protocol.LoginResponse{FirstName: "Test", LastName: "User"})
			Eventually(c.count("Login", "Success")).Should(Equal(1))

			c.write("LOGOUT\n")
			res := c.result()
			Expect(res.Reason).To(Equal(session.ReasonLogout))
			Eventually(func() int { return server.countOf(protocol.KindLogoutRequest) }).Should(Equal(1))
		})
	})

	Describe("Rejection mode", func() {
		It("offers a bad password and reports the failure", func() {
			c = startClient(server, timing.Rejection, timing.Rejection.Policy())
			Eventually(func() int { return server.countOf(protocol.KindLoginRequest) }).Should(Equal(1))

			req := server.actions()[0].(protocol.LoginRequest)
			Expect(req.Password).To(Equal(timing.RejectionPassword))

			server.send(protocol.Error{Detail: "invalid credentials"})
			res := c.result()
			Expect(res.Reason).To(Equal(session.ReasonServerError))
			Expect(c.rec.Filter("Login", "Fail")[0].Val).To(Equal("Connection error: invalid credentials"))
		})
	})

	Describe("Interactive mode", func() {
		BeforeEach(func() {
			c = startClient(server, timing.Interactive, timing.Interactive.Policy())
		})

		It("does not log in until told to", func() {
			Consistently(func() int { return server.countOf(protocol.KindLoginRequest) }, 100*time.Millisecond).Should(BeZero())

			c.write("LOGIN Ann Other secret\n")
			Eventually(func() int { return server.countOf(protocol.KindLoginRequest) }).Should(Equal(1))
		})

		It("holds later commands while sleeping", func() {
			started := time.Now()
			c.write("SLEEP 0.3\nCHAT after the nap\n")

			Eventually(func() int { return server.countOf(protocol.KindChatFromViewer) }, 2*time.Second).Should(Equal(1))
			Expect(server.firstTime(protocol.KindChatFromViewer).Sub(started)).To(BeNumerically(">=", 300*time.Millisecond))
		})

		It("reports unknown commands without touching the session", func() {
			c.write("DANCE\nSUBJECTIVE_BECAUSE testing\nSUBJECTIVE_WHY\n")

			Eventually(c.count("Cognition", "Why")).Should(Equal(1))
			Expect(c.rec.Filter("System", "Warning")[0].Val).To(Equal("Unknown command: DANCE"))
			Expect(c.rec.Filter("Cognition", "Why")[0].Val).To(Equal("testing"))
			Expect(server.actions()).To(BeEmpty())
		})

		It("exits at end of input", func() {
			Expect(c.stdin.Close()).To(Succeed())
			res := c.result()
			Expect(res.Reason).To(Equal(session.ReasonEndOfInput))
		})
	})
})
