package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/plyr-settlement/internal/model"
)

// decode reads a JSON request body into v. An empty body leaves v unchanged.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return invalid("invalid request body")
	}
	return nil
}

// pathAddress parses the named path variable as an address
func pathAddress(r *http.Request, name string) (model.Address, error) {
	addr, err := model.ParseAddress(mux.Vars(r)[name])
	if err != nil {
		return model.Address{}, invalid("invalid %s address %q", name, mux.Vars(r)[name])
	}
	return addr, nil
}

// pathRoom returns the game id and room number addressed by the path
func pathRoom(r *http.Request) (string, uint64, error) {
	vars := mux.Vars(r)
	n, err := strconv.ParseUint(vars["room"], 10, 64)
	if err != nil {
		return "", 0, invalid("invalid room number %q", vars["room"])
	}
	return vars["game"], n, nil
}
