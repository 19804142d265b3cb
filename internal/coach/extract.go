package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ytakeda/fitcoach/internal/llm"
)

// maxScanImageSize caps how much image data is fetched for extraction (8 MB).
const maxScanImageSize = 8 << 20

// imageClient fetches uploaded scan images. Extraction runs under the
// caller's context; this timeout only bounds the image download itself.
var imageClient = &http.Client{Timeout: 30 * time.Second}

// extractionPrompt is the fixed instruction for reading an InBody analysis
// sheet. The eleven-field schema is the contract: every key must come back,
// unresolved ones as null.
const extractionPrompt = `You are an expert data extraction assistant specializing in fitness and health reports.
Your task is to analyze the provided image of a Japanese InBody analysis sheet (like the InBody 380N) and extract key metrics.
Return ONLY a valid JSON object with the exact schema below. Do not include any other text, explanations, or markdown formatting.
If a value for a key cannot be found, the value for that key should be null.

JSON Schema:
{
  "name": <string | null>,
  "age": <number | null>,
  "height": <number | null>,
  "weight": <number | null>,
  "bodyFatPercentage": <number | null>,
  "skeletalMuscleMass": <number | null>,
  "bodyFatMass": <number | null>,
  "smi": <number | null>,
  "bmr": <number | null>,
  "visceralFatLevel": <number | null>,
  "inbodyScore": <number | null>
}

Extraction Instructions:
- Find the most recent measurement. On the body composition history chart this is the right-most column.
- 'name': extract the ID field, often a name.
- 'age': extract the age.
- 'height': extract the height in cm.
- 'weight': take the value from the muscle-fat analysis section, not the history chart.
- 'bodyFatPercentage': take the value from the obesity index analysis section.
- 'skeletalMuscleMass': use the soft lean mass value from the muscle-fat analysis section, in kg.
- 'bodyFatMass': use the value from the muscle-fat analysis section, in kg.
- 'smi': the skeletal muscle index, found in the research parameters section, in kg/m^2.
- 'bmr': the basal metabolic rate, found in the research parameters section, in kcal.
- 'visceralFatLevel': found in the weight control section.
- 'inbodyScore': the InBody score out of 100.`

// Extraction is one parsed InBody scan. Pointer fields distinguish a value
// the model could not read (nil, serialized as null) from zero.
type Extraction struct {
	Name               *string  `json:"name"`
	Age                *float64 `json:"age"`
	Height             *float64 `json:"height"`
	Weight             *float64 `json:"weight"`
	BodyFatPercentage  *float64 `json:"bodyFatPercentage"`
	SkeletalMuscleMass *float64 `json:"skeletalMuscleMass"`
	BodyFatMass        *float64 `json:"bodyFatMass"`
	SMI                *float64 `json:"smi"`
	BMR                *float64 `json:"bmr"`
	VisceralFatLevel   *float64 `json:"visceralFatLevel"`
	InBodyScore        *float64 `json:"inbodyScore"`
}

// ExtractBodyMetrics downloads the image at imageURL and runs the fixed
// extraction prompt against the vision model at zero temperature. The model
// output is validated field by field before anything reaches the store.
func ExtractBodyMetrics(ctx context.Context, provider llm.Provider, imageURL string) (*Extraction, error) {
	image, mimeType, err := fetchImage(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	return ExtractBodyMetricsImage(ctx, provider, image, mimeType)
}

// ExtractBodyMetricsImage runs the extraction prompt against raw image
// bytes already in hand, e.g. a fresh upload.
func ExtractBodyMetricsImage(ctx context.Context, provider llm.Provider, image []byte, mimeType string) (*Extraction, error) {
	resp, err := provider.GenerateVision(ctx, extractionPrompt, image, mimeType, llm.Options{
		Temperature: 0,
		JSONOutput:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("coach: extract metrics: %w", err)
	}

	return parseExtraction(resp.Content)
}

// fetchImage downloads an image and sniffs its MIME type.
func fetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("coach: create image request: %w", err)
	}

	resp, err := imageClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("coach: fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("coach: fetch image: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxScanImageSize))
	if err != nil {
		return nil, "", fmt.Errorf("coach: read image: %w", err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}

// extractionFields maps each schema key to whether it holds a string.
var extractionFields = map[string]bool{
	"name":               true,
	"age":                false,
	"height":             false,
	"weight":             false,
	"bodyFatPercentage":  false,
	"skeletalMuscleMass": false,
	"bodyFatMass":        false,
	"smi":                false,
	"bmr":                false,
	"visceralFatLevel":   false,
	"inbodyScore":        false,
}

// parseExtraction validates the model output against the eleven-field
// schema: every field must be present and be null, or the right primitive
// type. Anything else is a ValidationError.
func parseExtraction(content string) (*Extraction, error) {
	raw := extractJSON(content, '{', '}')
	if raw == nil {
		return nil, validationErrorf("no JSON object in extraction response")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, validationErrorf("extraction response is not a JSON object: %v", err)
	}

	out := &Extraction{}
	for key, isString := range extractionFields {
		value, ok := fields[key]
		if !ok {
			return nil, validationErrorf("missing field %q", key)
		}
		if string(value) == "null" {
			continue
		}
		if isString {
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return nil, validationErrorf("field %q is not a string or null", key)
			}
			out.Name = &s
			continue
		}
		var f float64
		if err := json.Unmarshal(value, &f); err != nil {
			return nil, validationErrorf("field %q is not a number or null", key)
		}
		switch key {
		case "age":
			out.Age = &f
		case "height":
			out.Height = &f
		case "weight":
			out.Weight = &f
		case "bodyFatPercentage":
			out.BodyFatPercentage = &f
		case "skeletalMuscleMass":
			out.SkeletalMuscleMass = &f
		case "bodyFatMass":
			out.BodyFatMass = &f
		case "smi":
			out.SMI = &f
		case "bmr":
			out.BMR = &f
		case "visceralFatLevel":
			out.VisceralFatLevel = &f
		case "inbodyScore":
			out.InBodyScore = &f
		}
	}
	return out, nil
}
