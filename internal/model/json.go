package model

import (
	"encoding/json"
	"fmt"
)

// ParseJSON decodes a model configuration from the JSON document format the
// upstream generator emits. The result is decoded only, not validated; call
// Validate (or hand it to the engine, which does) before use.
func ParseJSON(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding model config: %w", err)
	}
	return cfg, nil
}

// UnmarshalJSON accepts both shapes the generator has produced for a flow
// connection: the object form {"flow_name", "stock_name", "direction"} and
// the legacy 3-element array form ["flow", "stock", "direction"].
func (c *Connection) UnmarshalJSON(data []byte) error {
	var triple []string
	if err := json.Unmarshal(data, &triple); err == nil {
		if len(triple) != 3 {
			return fmt.Errorf("flow connection array must have 3 elements, got %d", len(triple))
		}
		c.Flow, c.Stock, c.Direction = triple[0], triple[1], triple[2]
		return nil
	}

	type connectionObject Connection // avoid recursing into this method
	var obj connectionObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decoding flow connection: %w", err)
	}
	*c = Connection(obj)
	return nil
}
