package codec

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Suhaibinator/gazelle/pkg/common"
)

type testRequest struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type testResponse struct {
	Greeting string `json:"greeting"`
	Age      int    `json:"age"`
}

// TestJSONCodec tests the JSONCodec
func TestJSONCodec(t *testing.T) {
	codec := NewJSONCodec[testRequest, testResponse]()

	// Test Decode
	req := common.NewRequest("POST", "/test", common.WithRequestBody([]byte(`{"name":"John","age":30}`)))
	data, err := codec.Decode(req)
	if err != nil {
		t.Fatalf("Failed to decode request: %v", err)
	}
	if data.Name != "John" {
		t.Errorf("Expected name to be %q, got %q", "John", data.Name)
	}
	if data.Age != 30 {
		t.Errorf("Expected age to be %d, got %d", 30, data.Age)
	}

	// Test Encode keeps the base status and headers
	base := common.NewResponse(http.StatusCreated, nil).WithHeader("X-Base", "1")
	resp, err := codec.Encode(base, testResponse{Greeting: "Hello, John!", Age: 30})
	if err != nil {
		t.Fatalf("Failed to encode response: %v", err)
	}
	if resp.HeaderValue("Content-Type") != "application/json" {
		t.Errorf("Expected Content-Type to be %q, got %q", "application/json", resp.HeaderValue("Content-Type"))
	}
	if resp.StatusCode() != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d", http.StatusCreated, resp.StatusCode())
	}
	if resp.HeaderValue("X-Base") != "1" {
		t.Errorf("Expected base header to be kept")
	}
	if base.HeaderValue("Content-Type") != "" {
		t.Errorf("Expected base response to be unchanged")
	}

	var decoded testResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
	if decoded.Greeting != "Hello, John!" {
		t.Errorf("Expected greeting to be %q, got %q", "Hello, John!", decoded.Greeting)
	}
}

// TestJSONCodecEmptyBody tests both empty body policies
func TestJSONCodecEmptyBody(t *testing.T) {
	codec := NewJSONCodec[testRequest, testResponse]()
	req := common.NewRequest("GET", "/test")

	data, err := codec.Decode(req)
	if err != nil {
		t.Errorf("Expected empty body to decode to zero value, got %v", err)
	}
	if data != (testRequest{}) {
		t.Errorf("Expected zero value, got %+v", data)
	}

	codec.DisallowEmptyBody = true
	if _, err := codec.Decode(req); err == nil {
		t.Errorf("Expected error when decoding empty body")
	}
}

// TestJSONCodecErrors tests error handling in the JSONCodec
func TestJSONCodecErrors(t *testing.T) {
	codec := NewJSONCodec[testRequest, testResponse]()

	req := common.NewRequest("POST", "/test", common.WithRequestBody([]byte(`{"name":"John","age":invalid}`)))
	if _, err := codec.Decode(req); err == nil {
		t.Errorf("Expected error when decoding invalid JSON")
	}

	type unmarshalableResponse struct {
		Channel chan int `json:"channel"`
	}
	codec2 := NewJSONCodec[testRequest, unmarshalableResponse]()
	base := common.NewResponse(http.StatusOK, []byte("untouched"))
	resp, err := codec2.Encode(base, unmarshalableResponse{Channel: make(chan int)})
	if err == nil {
		t.Errorf("Expected error when marshaling fails")
	}
	if resp.BodyString() != "untouched" {
		t.Errorf("Expected base response on failure, got %q", resp.BodyString())
	}
}
