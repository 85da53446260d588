package api

import (
	"encoding/json/v2"
	"errors"
	"net/http"

	"github.com/pressmapapp/pressmap-server/internal/backup"
	"github.com/pressmapapp/pressmap-server/internal/http/response"
)

// SnapshotRequest labels a manual snapshot.
type SnapshotRequest struct {
	Reason string `json:"reason"`
}

// handleCreateSnapshot writes a dataset snapshot to disk.
func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	reason := "manual"
	if r.ContentLength != 0 {
		var req SnapshotRequest
		if err := json.UnmarshalRead(r.Body, &req); err != nil {
			response.BadRequest(w, "Invalid request body", s.logger)
			return
		}
		if req.Reason != "" {
			reason = req.Reason
		}
	}

	result, err := s.snapshots.Create(r.Context(), reason)
	if err != nil {
		s.logger.Error("Snapshot failed", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}
	response.Created(w, result, s.logger)
}

// handleListSnapshots returns stored snapshots, newest first.
func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.snapshots.List(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, snapshots, s.logger)
}

// RestoreRequest names the snapshot to restore.
type RestoreRequest struct {
	Path string `json:"path" validate:"required"`
}

// handleRestoreSnapshot replaces the dataset with a snapshot's contents.
func (s *Server) handleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	var req RestoreRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	manifest, err := s.snapshots.Restore(r.Context(), req.Path)
	if err != nil {
		if errors.Is(err, backup.ErrSnapshotNotFound) {
			response.NotFound(w, "Snapshot not found", s.logger)
			return
		}
		s.logger.Error("Restore failed", "error", err, "path", req.Path)
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, manifest, s.logger)
}
