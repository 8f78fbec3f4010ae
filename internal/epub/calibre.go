package epub

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const transcodeTimeout = 2 * time.Minute

// CalibreAvailable reports whether the ebook-convert CLI responds. The check
// runs the tool rather than just resolving it on PATH, since a broken
// install resolves fine and then fails every conversion.
func CalibreAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := exec.CommandContext(ctx, "ebook-convert", "--version").Run()
	return err == nil
}

// transcodeAZW3 shells out to ebook-convert to turn an EPUB into AZW3 next
// to it.
func transcodeAZW3(ctx context.Context, epubPath string) (string, error) {
	azw3Path := strings.TrimSuffix(epubPath, ".epub") + ".azw3"

	runCtx, cancel := context.WithTimeout(ctx, transcodeTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "ebook-convert", epubPath, azw3Path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ebook-convert: %w: %s", err, firstLine(out))
	}

	log.Info().Str("path", azw3Path).Msg("transcoded to azw3")
	return azw3Path, nil
}

func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
