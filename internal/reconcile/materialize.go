package reconcile

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	apperrors "github.com/ocrmd/ocrmd/internal/errors"
)

// digestBytes truncates the id digest; 64 bits is far beyond the handful of
// image ids a single document carries
const digestBytes = 8

// ImageDigest returns the stable digest used in materialized filenames.
// It hashes the image id, not the payload, so reruns and payload changes
// produce identical names.
func ImageDigest(id string) string {
	sum := blake3.Sum256([]byte(id))
	return hex.EncodeToString(sum[:digestBytes])
}

// ImageFilename returns the on-disk name for an image id
func ImageFilename(id string) string {
	return "image-" + ImageDigest(id) + ".png"
}

// Materialize decodes page images and writes them into dir, creating the
// directory on first write. It returns the id-to-relative-path mapping for
// every image that made it to disk. Decode and write failures are logged,
// recorded and skipped so one broken payload never sinks the page; failed
// ids stay out of the mapping and their references are left dangling.
func (r *Reconciler) Materialize(images map[string]string, dir string) (map[string]string, []ImageFailure) {
	resolved := make(map[string]string, len(images))
	var failures []ImageFailure

	dirCreated := false
	base := filepath.Base(dir)

	for _, id := range sortedIDs(images) {
		data, err := decodePayload(images[id])
		if err != nil {
			r.logger.Warn().Str("image_id", id).Err(err).Msg("skipping undecodable image")
			failures = append(failures, ImageFailure{ID: id, Err: apperrors.NewImageDecodeError(id, err)})
			continue
		}

		name := ImageFilename(id)
		target := filepath.Join(dir, name)

		if !dirCreated {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				r.logger.Warn().Str("image_id", id).Str("dir", dir).Err(err).Msg("skipping image, images directory not writable")
				failures = append(failures, ImageFailure{ID: id, Err: apperrors.NewImageWriteError(id, target, err)})
				continue
			}
			dirCreated = true
		}

		if err := os.WriteFile(target, data, 0o644); err != nil {
			r.logger.Warn().Str("image_id", id).Str("path", target).Err(err).Msg("skipping unwritable image")
			failures = append(failures, ImageFailure{ID: id, Err: apperrors.NewImageWriteError(id, target, err)})
			continue
		}

		// references are slash-separated regardless of platform
		resolved[id] = path.Join(base, name)
		r.logger.Debug().Str("image_id", id).Str("path", target).Int("bytes", len(data)).Msg("image written")
	}

	return resolved, failures
}

// decodePayload strips an optional data-URI prefix and decodes base64
func decodePayload(payload string) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("empty payload")
	}
	return base64.StdEncoding.DecodeString(stripDataPrefix(payload))
}

// stripDataPrefix drops a leading data:<mime>;base64, marker if present
func stripDataPrefix(payload string) string {
	if !strings.HasPrefix(payload, "data:") {
		return payload
	}
	if i := strings.Index(payload, "base64,"); i >= 0 {
		return payload[i+len("base64,"):]
	}
	return payload
}
