package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/mcoot/plyr-settlement/internal/model"
)

func parseAddress(s string) (model.Address, error) {
	return model.ParseAddress(s)
}

func parseAmount(s string) (model.Amount, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return model.Amount(n), nil
}

// parseAsset accepts "native" for the native currency
func parseAsset(s string) (model.Address, error) {
	if s == "" || s == "native" {
		return model.NativeAsset, nil
	}
	return parseAddress(s)
}

func roomPath(gameID, roomNumber string) (string, error) {
	n, err := strconv.ParseUint(roomNumber, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid room number %q", roomNumber)
	}
	return fmt.Sprintf("/api/v1/rooms/%s/%d", url.PathEscape(gameID), n), nil
}
