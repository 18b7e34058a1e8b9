package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// pathID returns the trimmed {id} route parameter and whether it is a UUID.
// Every stored id is one, so anything else can only miss.
func pathID(r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	return id, isUUID(id)
}

func isUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}

// parseDeliveryDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDeliveryDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("deliveryDate is required")
	}
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("deliveryDate must be YYYY-MM-DD or RFC 3339")
	}
	return parsed, nil
}

func parseBoolParam(value string) (*bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, fmt.Errorf("invalid bool")
	}
	return &parsed, nil
}
