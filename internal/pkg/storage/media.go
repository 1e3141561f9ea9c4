package storage

import (
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// MediaHandler serves stored objects over HTTP. Used in development with
// the local backend, where no CDN fronts the bucket.
func MediaHandler(st Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/media/")
		if key == "" || strings.Contains(key, "..") {
			http.NotFound(w, r)
			return
		}

		ok, err := st.Exists(r.Context(), key)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to check stored object")
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.NotFound(w, r)
			return
		}

		rc, err := st.Get(r.Context(), key)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to read stored object")
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		defer rc.Close()

		head := make([]byte, 512)
		n, _ := io.ReadFull(rc, head)
		w.Header().Set("Content-Type", http.DetectContentType(head[:n]))
		w.Header().Set("Cache-Control", "public, max-age=3600")
		if _, err := w.Write(head[:n]); err != nil {
			return
		}
		io.Copy(w, rc)
	}
}
