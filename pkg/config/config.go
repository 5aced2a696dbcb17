package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Numeric codes written into the relationship matrix.
// Zero is reserved for "unset", so all three codes must be non-zero.
type RelationCodes struct {
	Father float32 `json:"father"` // object i is the father of object j
	Child  float32 `json:"child"`  // object i is a child of object j
	NoRel  float32 `json:"norel"`  // no manipulation relationship
}

type Config struct {
	MaxBoxes   int           `json:"maxBoxes"`   // Number of rows in the padded ground-truth box tensor
	MaxGrasps  int           `json:"maxGrasps"`  // Number of rows in the padded ground-truth grasp tensor
	BatchSize  int           `json:"batchSize"`  // Samples per training batch. Consecutive samples in ratio order share a target aspect ratio.
	NumClasses int           `json:"numClasses"` // Object classes, including background
	Scales     []int         `json:"scales"`     // Candidate target sizes for image scaling. One is picked at random per fetch.
	PixelMeans [3]float32    `json:"pixelMeans"` // Per-channel means, in decoded (RGB) channel order, subtracted before the channel swap
	Relations  RelationCodes `json:"relations"`
}

func Default() *Config {
	return &Config{
		MaxBoxes:   50,
		MaxGrasps:  100,
		BatchSize:  8,
		NumClasses: 32,
		Scales:     []int{600},
		PixelMeans: [3]float32{122.7717, 115.9465, 102.9801},
		Relations:  RelationCodes{Father: 1, Child: 2, NoRel: 3},
	}
}

func Load(filename string) (*Config, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("Error loading %v: %w", filename, err)
	}
	cfg := Default()
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("Error loading as JSON %v: %w", filename, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("Invalid config %v: %w", filename, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MaxBoxes < 1 {
		return fmt.Errorf("maxBoxes must be at least 1 (have %v)", c.MaxBoxes)
	}
	if c.MaxGrasps < 1 {
		return fmt.Errorf("maxGrasps must be at least 1 (have %v)", c.MaxGrasps)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batchSize must be at least 1 (have %v)", c.BatchSize)
	}
	if len(c.Scales) == 0 {
		return fmt.Errorf("at least one scale is required")
	}
	for _, s := range c.Scales {
		if s < 1 {
			return fmt.Errorf("invalid scale %v", s)
		}
	}
	if c.Relations.Father == 0 || c.Relations.Child == 0 || c.Relations.NoRel == 0 {
		return fmt.Errorf("relation codes must be non-zero (zero means unset)")
	}
	return nil
}
