package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/allencass/aistudio/pkg/apperr"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for x := 0; x < 4; x++ {
		for y := 0; y < 3; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 80), B: 200, A: 255})
		}
	}
	return img
}

func encode(t *testing.T, fn func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, fn(&buf, testImage()))
	return buf.Bytes()
}

func pngBytes(t *testing.T) []byte {
	return encode(t, func(b *bytes.Buffer, img image.Image) error { return png.Encode(b, img) })
}

func TestGenerateTogether(t *testing.T) {
	want := pngBytes(t)
	var got togetherRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/together/v1/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString(want)}},
		})
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "hf_test", BaseURL: srv.URL})
	require.NoError(t, err)

	data, err := c.Generate(context.Background(), "  "+DefaultPrompt+" ")
	require.NoError(t, err)
	assert.Equal(t, want, data)
	assert.Equal(t, togetherRequest{Prompt: DefaultPrompt, Model: DefaultModel, ResponseFormat: "base64"}, got)
}

func TestGenerateTogetherURL(t *testing.T) {
	want := pngBytes(t)
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/files/img.png" {
			_, _ = w.Write(want)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"url": srv.URL + "/files/img.png"}},
		})
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "hf_test", BaseURL: srv.URL})
	require.NoError(t, err)

	data, err := c.Generate(context.Background(), "cat")
	require.NoError(t, err)
	assert.Equal(t, want, data)
}

func TestGeneratePNGFromHFInferenceJPEG(t *testing.T) {
	jpg := encode(t, func(b *bytes.Buffer, img image.Image) error { return jpeg.Encode(b, img, nil) })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hf-inference/models/"+DefaultModel, r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a turtle", body["inputs"])

		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(jpg)
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "hf_test", Provider: ProviderHFInference, BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	out, err := c.GeneratePNG(context.Background(), "a turtle")
	require.NoError(t, err)

	img, format, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		contains string
	}{
		{"unauthorized", 401, `{"error":"Invalid credentials in Authorization header"}`, "invalid API key"},
		{"credits", 402, `{"error":"You have exceeded your monthly included credits"}`, "credits exhausted"},
		{"loading", 503, `{"error":"Model is currently loading","estimated_time":20}`, "loading"},
		{"nested", 400, `{"error":{"message":"prompt too long"}}`, "prompt too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits++
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewClient(Config{APIKey: "hf_test", BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = c.Generate(context.Background(), "x")
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrExternalService)
			assert.Contains(t, err.Error(), tt.contains)
			assert.Equal(t, 1, hits)
		})
	}
}

func TestGenerateEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "hf_test", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = c.Generate(context.Background(), "x")
	assert.ErrorIs(t, err, apperr.ErrExternalService)
}

func TestGenerateEmptyPrompt(t *testing.T) {
	c, err := NewClient(Config{APIKey: "hf_test", BaseURL: "http://unused.invalid"})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "   ")
	assert.ErrorIs(t, err, apperr.ErrMissingInput)
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, apperr.ErrMissingCredential)
	assert.ErrorContains(t, err, APIKeyEnv)

	_, err = NewClient(Config{APIKey: "k", Provider: "replicate"})
	assert.ErrorContains(t, err, "unknown image provider")
}

func TestDecodeFormats(t *testing.T) {
	tests := []struct {
		format string
		data   []byte
	}{
		{"png", pngBytes(t)},
		{"jpeg", encode(t, func(b *bytes.Buffer, img image.Image) error { return jpeg.Encode(b, img, nil) })},
		{"bmp", encode(t, func(b *bytes.Buffer, img image.Image) error { return bmp.Encode(b, img) })},
	}
	for _, tt := range tests {
		img, format, err := Decode(tt.data)
		require.NoError(t, err, tt.format)
		assert.Equal(t, tt.format, format)
		assert.Equal(t, 4, img.Bounds().Dx())
	}

	_, _, err := Decode([]byte(`{"error":"not an image"}`))
	assert.ErrorIs(t, err, apperr.ErrExternalService)
}

func TestEncodePNGRoundTrip(t *testing.T) {
	out, err := EncodePNG(testImage())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	r, g, b, _ := img.At(3, 2).RGBA()
	assert.Equal(t, uint32(180*0x101), r)
	assert.Equal(t, uint32(160*0x101), g)
	assert.Equal(t, uint32(200*0x101), b)
}
