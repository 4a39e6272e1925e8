package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mcoot/plyr-settlement/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.User:
		o.printUser(v)
	case response.Mirror:
		fmt.Printf("Mirror (%s): %s\n", v.Username, v.Mirror)
	case response.Room:
		o.printRoom(v)
	case response.RoomAddress:
		fmt.Printf("Room %s/%d: %s\n", v.GameID, v.RoomNumber, v.Address)
	case response.RoomCount:
		fmt.Printf("Game %s: %d rooms\n", v.GameID, v.Count)
	case response.Router:
		o.printRouter(v)
	case response.GameRule:
		o.printGameRule(v)
	case response.Deployment:
		fmt.Printf("Directory: %s\nRouter:    %s\nGame rule: %s\n", v.Directory, v.Router, v.GameRule)
	case response.Asset:
		fmt.Printf("%s (%d decimals) at %s, minter %s\n", v.Symbol, v.Decimals, v.Address, v.Minter)
	case []response.Asset:
		for _, a := range v {
			fmt.Printf("  - %s (%d decimals) at %s\n", a.Symbol, a.Decimals, a.Address)
		}
	case response.Balance:
		fmt.Printf("%s: %d\n", v.Asset, v.Balance)
	case []response.Balance:
		for _, b := range v {
			fmt.Printf("  %s: %d\n", b.Asset, b.Balance)
		}
	case response.Slot:
		fmt.Printf("Slot: %s\nKind: %s\nLogic: %s\nAdmin: %s\n", v.Address, v.Kind, v.Logic, v.Admin)
	case []response.Event:
		for _, e := range v {
			fmt.Printf("%s %-22s %s\n", e.Timestamp.Format("2006-01-02T15:04:05Z07:00"), e.Type, e.Emitter)
		}
	case TokenResult:
		fmt.Printf("Caller: %s\nExpires: %s\nToken: %s\n", v.Caller, v.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"), v.Token)
	case HealthResult:
		o.printHealth(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult is the server's health report plus, once bootstrapped, the
// deployment it serves
type HealthResult struct {
	Server string `json:"server"`
	response.Health
	Deployment *response.Deployment `json:"deployment,omitempty"`
}

func (o *Output) printHealth(h HealthResult) {
	fmt.Printf("Server: %s\n", h.Server)
	fmt.Printf("Status: %s\n", h.Status)
	fmt.Printf("Bootstrapped: %t\n", h.Bootstrapped)
	fmt.Printf("Stream clients: %d\n", h.StreamClients)
	if h.Deployment != nil {
		o.Print(*h.Deployment)
	}
}

func (o *Output) printUser(u response.User) {
	fmt.Printf("User: %s\n", u.Username)
	fmt.Printf("Mirror: %s\n", u.Mirror)
	if !u.Owner.IsZero() {
		fmt.Printf("Owner: %s\n", u.Owner)
	}
	fmt.Printf("Tier: %d\n", u.Tier)
}

func (o *Output) printRoom(r response.Room) {
	state := "open"
	switch {
	case r.Closed:
		state = "closed"
	case r.Ended:
		state = "ended"
	}
	fmt.Printf("Room: %s/%d (%s)\n", r.GameID, r.RoomNumber, r.Address)
	fmt.Printf("State: %s\n", state)
	fmt.Printf("Deadline: %s\n", r.Deadline.Format("2006-01-02T15:04:05Z07:00"))
	if r.ClosedTo != nil {
		fmt.Printf("Swept to: %s\n", *r.ClosedTo)
	}
	fmt.Printf("Members (%d): %s\n", len(r.Members), strings.Join(r.Members, ", "))
	if len(r.Balances) > 0 {
		fmt.Println("Balances:")
		for _, b := range r.Balances {
			fmt.Printf("  %s: %d\n", b.Asset, b.Balance)
		}
	}
}

func (o *Output) printRouter(r response.Router) {
	fmt.Printf("Router: %s\n", r.Address)
	fmt.Printf("Owner: %s\n", r.Owner)
	fmt.Printf("Directory: %s\n", r.Directory)
	fmt.Printf("Operators (%d):\n", len(r.Operators))
	for _, op := range r.Operators {
		fmt.Printf("  - %s\n", op)
	}
	fmt.Printf("Rules (%d):\n", len(r.Rules))
	for _, rule := range r.Rules {
		enabled := "disabled"
		if rule.Enabled {
			enabled = "enabled"
		}
		fmt.Printf("  - %s [%s]\n", rule.Rule, enabled)
	}
}

func (o *Output) printGameRule(g response.GameRule) {
	fmt.Printf("Game rule: %s\n", g.Address)
	fmt.Printf("Owner: %s\n", g.Owner)
	fmt.Printf("Platform fee: %d%% to %s\n", g.PlatformFee, g.FeeTo)
	fmt.Printf("Operators (%d):\n", len(g.Operators))
	for _, op := range g.Operators {
		fmt.Printf("  - %s\n", op)
	}
	if len(g.RoomCounts) > 0 {
		fmt.Println("Rooms:")
		for game, n := range g.RoomCounts {
			fmt.Printf("  %s: %d\n", game, n)
		}
	}
}
