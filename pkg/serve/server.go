package serve

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/netcfgkit/iossection/pkg/intfname"
	"github.com/netcfgkit/iossection/pkg/scanner"
	"github.com/netcfgkit/iossection/pkg/section"
	"github.com/netcfgkit/iossection/pkg/writer"
)

// Version is the server protocol version
const Version = "1.0.0"

// Server answers section, interface-name and scan requests, one JSON object
// per line in each direction.
type Server struct {
	core    *scanner.Core
	encoder *json.Encoder
	decoder *json.Decoder
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new streaming server. core may be nil, in which case
// scan requests are rejected.
func NewServer(core *scanner.Core, in io.Reader, out io.Writer, opts ...Option) *Server {
	s := &Server{
		core:    core,
		encoder: json.NewEncoder(out),
		decoder: json.NewDecoder(bufio.NewReader(in)),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts the server main loop
func (s *Server) Run(ctx context.Context) error {
	s.sendReady()

	reqChan := make(chan Request, 1)
	errChan := make(chan error, 1)

	go func() {
		for {
			var req Request
			if err := s.decoder.Decode(&req); err != nil {
				errChan <- err
				return
			}
			select {
			case reqChan <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Process requests until stdin closes or context cancels
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errChan:
			// Drain any pending request before handling EOF
			for {
				select {
				case req := <-reqChan:
					if s.processRequest(ctx, req) {
						return nil
					}
				default:
					if err == io.EOF {
						return nil
					}
					s.sendError(ErrorKindDecode, ErrorKindDecode, err)
					return nil
				}
			}
		case req := <-reqChan:
			if s.processRequest(ctx, req) {
				return nil
			}
		}
	}
}

// processRequest handles a single request and returns true if the server should exit
func (s *Server) processRequest(ctx context.Context, req Request) bool {
	s.logger.Debug("request", "type", req.Type)

	switch req.Type {
	case "extract":
		s.handleSection(ctx, req.Type, section.ModeExtract, req.Payload)
	case "remove":
		s.handleSection(ctx, req.Type, section.ModeRemove, req.Payload)
	case "intf_parse":
		s.handleInterface(req.Type, intfname.Parse, req.Payload)
	case "intf_shorten":
		s.handleInterface(req.Type, intfname.Shorten, req.Payload)
	case "intf_expand":
		s.handleInterface(req.Type, intfname.Expand, req.Payload)
	case "scan":
		s.handleScan(ctx, req.Payload)
	case "scan_batch":
		s.handleScanBatch(ctx, req.Payload)
	case "close":
		return true
	default:
		s.sendError(req.Type, ErrorKindRequest, fmt.Errorf("unknown request type: %s", req.Type))
	}
	return false
}

func (s *Server) sendReady() {
	s.sendData("ready", ReadyData{Version: Version})
}

func (s *Server) handleSection(ctx context.Context, reqType string, mode section.Mode, payload json.RawMessage) {
	var p SectionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError(reqType, ErrorKindDecode, err)
		return
	}

	lines := p.Lines
	if lines == nil {
		lines = section.SplitLines(p.Content)
	}

	f, err := section.Compile(section.Config{
		Patterns:   p.Patterns,
		IgnoreCase: p.IgnoreCase,
		Prefix:     p.Prefix,
	})
	if err != nil {
		s.sendError(reqType, errorKind(err), err)
		return
	}

	out, err := f.Scan(lines, mode)
	if err != nil {
		s.sendError(reqType, errorKind(err), err)
		return
	}

	if err := writer.WriteLines(ctx, p.Filename, out); err != nil {
		s.sendError(reqType, errorKind(err), err)
		return
	}

	s.sendData(reqType, SectionData{Lines: out})
}

func (s *Server) handleInterface(reqType string, convert func(string) (intfname.Interface, error), payload json.RawMessage) {
	var p InterfacePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError(reqType, ErrorKindDecode, err)
		return
	}

	intf, err := convert(p.Name)
	if err != nil {
		s.sendError(reqType, ErrorKindIntf, err)
		return
	}
	s.sendData(reqType, InterfaceData(intf))
}

func (s *Server) handleScan(ctx context.Context, payload json.RawMessage) {
	if s.core == nil {
		s.sendError("scan", ErrorKindRequest, errors.New("scanner not configured"))
		return
	}

	var p ScanPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("scan", ErrorKindDecode, err)
		return
	}

	result, err := s.core.Scan(ctx, p.Content, p.Source)
	if err != nil {
		s.sendError("scan", ErrorKindIO, err)
		return
	}
	s.sendData("scan", result)
}

func (s *Server) handleScanBatch(ctx context.Context, payload json.RawMessage) {
	if s.core == nil {
		s.sendError("scan_batch", ErrorKindRequest, errors.New("scanner not configured"))
		return
	}

	var p ScanBatchPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("scan_batch", ErrorKindDecode, err)
		return
	}

	result, err := s.core.ScanBatch(ctx, p.Items)
	if err != nil {
		s.sendError("scan_batch", ErrorKindIO, err)
		return
	}
	s.sendData("scan_batch", result)
}

// errorKind maps engine and writer errors onto response error kinds.
func errorKind(err error) string {
	if errors.Is(err, writer.ErrWrite) {
		return ErrorKindIO
	}
	return scanner.ErrorKind(err)
}

func (s *Server) sendData(reqType string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.sendError(reqType, ErrorKindDecode, err)
		return
	}
	s.encode(Response{Success: true, Type: reqType, Data: data})
}

func (s *Server) sendError(reqType, kind string, err error) {
	s.logger.Debug("request failed", "type", reqType, "kind", kind, "error", err)
	s.encode(Response{
		Success:   false,
		Type:      reqType,
		Error:     err.Error(),
		ErrorKind: kind,
	})
}

func (s *Server) encode(resp Response) {
	if err := s.encoder.Encode(resp); err != nil {
		s.logger.Error("writing response", "error", err)
	}
}
