package api

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const cursorSeparator = ","
const cursorTimeFormat = time.RFC3339Nano

// encodeCursor creates an opaque cursor string from timestamp and ID.
func encodeCursor(ts time.Time, id int64) string {
	key := fmt.Sprintf("%s%s%d", ts.UTC().Format(cursorTimeFormat), cursorSeparator, id)
	return base64.URLEncoding.EncodeToString([]byte(key))
}

// decodeCursor parses the opaque cursor string back into timestamp and ID.
func decodeCursor(encoded string) (time.Time, int64, error) {
	decoded, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid cursor encoding: %w", err)
	}

	parts := strings.SplitN(string(decoded), cursorSeparator, 2)
	if len(parts) != 2 {
		return time.Time{}, 0, fmt.Errorf("invalid cursor format")
	}

	ts, err := time.Parse(cursorTimeFormat, parts[0])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid timestamp in cursor: %w", err)
	}

	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid id in cursor: %w", err)
	}

	return ts.UTC(), id, nil
}
