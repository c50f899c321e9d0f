package relayv1connect

import (
	"testing"

	relayv1 "github.com/mmynk/blast/pkg/relayv1"
)

func TestJSONCodec(t *testing.T) {
	codec := JSONCodec{}
	if codec.Name() != "json" {
		t.Errorf("Name() = %q, want json", codec.Name())
	}

	data, err := codec.Marshal(&relayv1.UpsertClientsRequest{Xlsx: []byte{0x50, 0x4b}})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"xlsx":"UEs="}` {
		t.Errorf("Marshal = %s", data)
	}

	var req relayv1.BroadcastRequest
	if err := codec.Unmarshal(nil, &req); err != nil {
		t.Errorf("empty body should decode to zero value, got %v", err)
	}
	if err := codec.Unmarshal([]byte(`{"message":"hi","ids":["a79b84d8a9"]}`), &req); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if req.Message != "hi" || len(req.Ids) != 1 {
		t.Errorf("decoded %+v", req)
	}
	if err := codec.Unmarshal([]byte(`{`), &req); err == nil {
		t.Error("expected error for truncated body")
	}
}
