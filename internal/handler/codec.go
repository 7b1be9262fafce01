package handler

import "encoding/json"

// jsonCodec は生成コードを使わずに Go の構造体をそのままやり取りするための
// Connect のコーデックです。"application/json" のリクエストを扱います
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
