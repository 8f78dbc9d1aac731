package assessments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/storage"
)

type snapshot struct {
	Assessment *Assessment `json:"assessment"`
	Applied    *Applied    `json:"applied,omitempty"`
	ArchivedAt time.Time   `json:"archived_at"`
}

func snapshotKey(a *Assessment) string {
	return fmt.Sprintf("assessments/%s/%s.json", a.EquipmentID, a.ID)
}

// store archives the finalized assessment. Archive failures never affect the
// committed result.
func (r *repo) store(ctx context.Context, res *Result) {
	data, err := json.Marshal(snapshot{
		Assessment: res.Assessment,
		Applied:    res.Applied,
		ArchivedAt: r.now(),
	})
	if err != nil {
		r.logger.Warn("snapshot encoding failed", "id", res.Assessment.ID, "error", err)
		return
	}

	key := snapshotKey(res.Assessment)
	err = r.archive.Upload(ctx, key, bytes.NewReader(data), "application/json")
	switch {
	case errors.Is(err, storage.ErrDisabled):
		r.logger.Debug("snapshot archive disabled", "id", res.Assessment.ID)
	case err != nil:
		r.logger.Warn("snapshot archive failed", "id", res.Assessment.ID, "key", key, "error", err)
	default:
		r.logger.Info("snapshot archived", "id", res.Assessment.ID, "key", key)
	}
}
