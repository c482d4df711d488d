// Package catalog は出品可能なブランドとモデルの対応表を提供する。
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed brands.yaml
var defaultData []byte

// Brand はブランド1件分の定義。
type Brand struct {
	Key    string   `yaml:"key" json:"key"`
	Label  string   `yaml:"label" json:"label"`
	Models []string `yaml:"models" json:"models"`
}

type file struct {
	Brands []Brand `yaml:"brands"`
}

// Catalog はブランドキーからモデル集合への読み取り専用の対応表。
// 生成後は変更されないため並行に参照してよい。
type Catalog struct {
	brands []Brand
	index  map[string]int
}

// Parse はYAMLデータからCatalogを生成する。
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(f.Brands) == 0 {
		return nil, errors.New("catalog has no brands")
	}

	c := &Catalog{brands: f.Brands, index: make(map[string]int, len(f.Brands))}
	for i, b := range f.Brands {
		if b.Key == "" {
			return nil, fmt.Errorf("catalog brand #%d has empty key", i+1)
		}
		if _, dup := c.index[b.Key]; dup {
			return nil, fmt.Errorf("catalog brand %q is defined twice", b.Key)
		}
		if len(b.Models) == 0 {
			return nil, fmt.Errorf("catalog brand %q has no models", b.Key)
		}
		c.index[b.Key] = i
	}
	return c, nil
}

// Load はpathのYAMLファイルからCatalogを読み込む。pathが空の場合は組み込みの表を返す。
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Default は組み込みのブランド表を返す。
func Default() *Catalog {
	c, err := Parse(defaultData)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// HasBrand はブランドキーが存在するかを返す。
func (c *Catalog) HasBrand(brand string) bool {
	_, ok := c.index[brand]
	return ok
}

// Models はブランドのモデル一覧を返す。未知のブランドの場合は空のスライスを返す。
func (c *Catalog) Models(brand string) []string {
	i, ok := c.index[brand]
	if !ok {
		return []string{}
	}
	return slices.Clone(c.brands[i].Models)
}

// HasModel はモデルがブランドに属するかを返す。
func (c *Catalog) HasModel(brand, carModel string) bool {
	i, ok := c.index[brand]
	if !ok {
		return false
	}
	return slices.Contains(c.brands[i].Models, carModel)
}

// Brands は全ブランドを定義順に返す。
func (c *Catalog) Brands() []Brand {
	out := make([]Brand, len(c.brands))
	for i, b := range c.brands {
		out[i] = Brand{Key: b.Key, Label: b.Label, Models: slices.Clone(b.Models)}
	}
	return out
}
