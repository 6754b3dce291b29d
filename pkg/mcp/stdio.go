package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// maxLineBytes caps a single JSON-RPC line on stdin. Prompts with
// large message payloads fit comfortably; anything bigger is a broken
// client.
const maxLineBytes = 10 * 1024 * 1024

// StdioTransport serves MCP over newline-delimited JSON-RPC on
// stdin/stdout. Each input line is one request; each response is
// written as one line and flushed. Logs must go to stderr so the
// protocol channel stays clean.
type StdioTransport struct {
	server *Server
	in     io.Reader
	out    io.Writer
}

// NewStdioTransport creates a transport bound to os.Stdin and
// os.Stdout.
func NewStdioTransport(server *Server) *StdioTransport {
	return &StdioTransport{
		server: server,
		in:     os.Stdin,
		out:    os.Stdout,
	}
}

// Serve reads requests until EOF. Blank lines are skipped; lines that
// fail to parse produce a parse error response and the loop continues.
// Returns nil on clean EOF.
func (t *StdioTransport) Serve(ctx context.Context) error {
	scanner := bufio.NewScanner(t.in)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	writer := bufio.NewWriter(t.out)

	slog.Debug("stdio transport ready, waiting for JSON-RPC messages on stdin")

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			slog.Error("failed to parse JSON-RPC request", "error", err)
			resp := NewErrorResponse(nil, CodeParseError, "Parse error: "+err.Error())
			if writeErr := writeLine(writer, resp); writeErr != nil {
				return writeErr
			}
			continue
		}

		slog.Debug("handling MCP request", "method", req.Method)

		resp := t.server.HandleRequest(ctx, &req)
		if resp == nil {
			continue
		}
		if err := writeLine(writer, resp); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stdin read failed: %w", err)
	}

	slog.Debug("stdin closed, shutting down stdio transport")
	return nil
}

// writeLine serializes a response as a single line and flushes so the
// client sees it immediately.
func writeLine(w *bufio.Writer, resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("response serialization failed: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("stdout write failed: %w", err)
	}
	if err := w.WriteByte('\n'); err != nil {
		return fmt.Errorf("stdout write failed: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("stdout flush failed: %w", err)
	}
	return nil
}
