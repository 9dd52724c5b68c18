package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SlotKey identifies one recurring weekly time window. It carries no
// duration. On the wire it is the string "Day-Time", e.g. "Monday-6:00 PM".
type SlotKey struct {
	Day  string
	Time string
}

func (s SlotKey) String() string {
	return s.Day + "-" + s.Time
}

func ParseSlotKey(raw string) (SlotKey, error) {
	day, t, ok := strings.Cut(raw, "-")
	if !ok || day == "" || t == "" {
		return SlotKey{}, fmt.Errorf("invalid slot %q, expected \"Day-Time\"", raw)
	}
	return SlotKey{Day: day, Time: t}, nil
}

func (s SlotKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SlotKey) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSlotKey(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
