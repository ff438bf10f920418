package service

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/joshuapare/webmap/internal/extract"
	"github.com/joshuapare/webmap/internal/version"
	"github.com/joshuapare/webmap/internal/wire"
	"github.com/joshuapare/webmap/internal/writer"
)

// Paths served by the service.
const (
	PathActors  = "/api/actors"
	PathStop    = "/api/stop"
	PathDump    = "/api/dump"
	PathVersion = "/api/version"
)

// DumpFile is the name of the diagnostic dump written by PathDump.
const DumpFile = "dump.txt"

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+PathActors, s.handleActors)
	mux.HandleFunc("GET "+PathStop, s.handleStop)
	mux.HandleFunc("GET "+PathDump, s.handleDump)
	mux.HandleFunc("GET "+PathVersion, s.handleVersion)
	if root, ok := s.webRoot(); ok {
		mux.Handle("GET /", http.FileServer(http.Dir(root)))
	}
	return mux
}

func writeJSON(w http.ResponseWriter, body *bytes.Buffer) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(body.Bytes())
}

func (s *Server) handleActors(w http.ResponseWriter, r *http.Request) {
	snap := s.ex.Extract()
	var body bytes.Buffer
	if err := wire.Encode(&body, snap); err != nil {
		s.log.Error("encode snapshot", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if snap.Unresolved {
		s.log.Debug("snapshot unresolved", zap.String("reason", snap.Reason))
	}
	writeJSON(w, &body)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.log.Info("stop requested", zap.String("remote", r.RemoteAddr))
	var body bytes.Buffer
	json.NewEncoder(&body).Encode(wire.Ok(nil))
	writeJSON(w, &body)
	s.Stop()
}

func (s *Server) handleDump(w http.ResponseWriter, r *http.Request) {
	var body bytes.Buffer
	path, err := s.writeDump()
	if err != nil {
		s.log.Error("dump failed", zap.Error(err))
		wire.EncodeError(&body, err.Error())
		writeJSON(w, &body)
		return
	}
	json.NewEncoder(&body).Encode(wire.Ok(map[string]any{"path": path}))
	writeJSON(w, &body)
}

func (s *Server) writeDump() (string, error) {
	path, err := filepath.Abs(filepath.Join(s.opts.Dir, DumpFile))
	if err != nil {
		return "", err
	}
	var sum extract.DumpSummary
	fw := &writer.FileWriter{Path: path}
	err = fw.Write(func(out io.Writer) error {
		var derr error
		sum, derr = s.ex.Dump(out)
		return derr
	})
	if err != nil {
		return "", err
	}
	s.log.Info("dump written", zap.String("path", path), zap.Int("objects", sum.Objects))
	return path, nil
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	var body bytes.Buffer
	json.NewEncoder(&body).Encode(wire.Ok(map[string]any{"version": version.Current()}))
	writeJSON(w, &body)
}
