package console

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/*.yaml fixtures/schemas/*.json
var embeddedFixtures embed.FS

// Dataset holds the records every screen lists.
type Dataset struct {
	Users      []User     `yaml:"users"`
	Products   []Product  `yaml:"products"`
	Categories []Category `yaml:"categories"`
	Bookings   []Booking  `yaml:"bookings"`
}

type fixtureFile struct {
	name   string
	schema string
}

var fixtureFiles = []fixtureFile{
	{name: "users.yaml", schema: "users.json"},
	{name: "products.yaml", schema: "products.json"},
	{name: "categories.yaml", schema: "categories.json"},
	{name: "bookings.yaml", schema: "bookings.json"},
}

// FixtureFiles lists the documents a fixture directory may provide.
func FixtureFiles() []string {
	names := make([]string, 0, len(fixtureFiles))
	for _, f := range fixtureFiles {
		names = append(names, f.name)
	}
	return names
}

// DefaultDataset loads the embedded fixtures.
func DefaultDataset() (Dataset, error) {
	sub, err := fs.Sub(embeddedFixtures, "fixtures")
	if err != nil {
		return Dataset{}, err
	}
	return LoadDataset(sub, nil)
}

// LoadDatasetDir loads fixtures from dir, falling back to the embedded
// document for any file the directory does not provide.
func LoadDatasetDir(dir string) (Dataset, error) {
	if dir == "" {
		return DefaultDataset()
	}
	fallback, err := fs.Sub(embeddedFixtures, "fixtures")
	if err != nil {
		return Dataset{}, err
	}
	return LoadDataset(os.DirFS(dir), fallback)
}

// LoadDataset validates and decodes every fixture document in fsys. Missing
// documents are read from fallback when it is non-nil. All failures are
// reported together.
func LoadDataset(fsys fs.FS, fallback fs.FS) (Dataset, error) {
	var (
		dataset Dataset
		errs    []error
	)
	for _, file := range fixtureFiles {
		data, err := readFixture(fsys, fallback, file.name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := ValidateFixture(file.name, data); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := decodeFixture(data, &dataset); err != nil {
			errs = append(errs, fmt.Errorf("console: decode %s: %w", file.name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return Dataset{}, err
	}
	dataset.countProducts()
	return dataset, nil
}

// ValidateFixtureDir checks every fixture document in dir without decoding it.
func ValidateFixtureDir(dir string) error {
	fsys := os.DirFS(dir)
	var errs []error
	for _, file := range fixtureFiles {
		data, err := fs.ReadFile(fsys, file.name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		if err := ValidateFixture(file.name, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func readFixture(fsys, fallback fs.FS, name string) ([]byte, error) {
	data, err := fs.ReadFile(fsys, name)
	if err == nil {
		return data, nil
	}
	if fallback != nil && errors.Is(err, fs.ErrNotExist) {
		return fs.ReadFile(fallback, name)
	}
	return nil, fmt.Errorf("console: read %s: %w", name, err)
}

// ValidateFixture checks the YAML document named name against its JSON schema.
func ValidateFixture(name string, data []byte) error {
	file, ok := lookupFixture(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFixture, name)
	}
	schema, err := compiledSchema(file.schema)
	if err != nil {
		return err
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("console: parse %s: %w", file.name, err)
	}
	payload, err := jsonValue(doc)
	if err != nil {
		return fmt.Errorf("console: normalize %s: %w", file.name, err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("console: %s failed validation: %w", file.name, err)
	}
	return nil
}

func lookupFixture(name string) (fixtureFile, bool) {
	for _, f := range fixtureFiles {
		if f.name == name {
			return f, true
		}
	}
	return fixtureFile{}, false
}

func decodeFixture(data []byte, dataset *Dataset) error {
	var part Dataset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&part); err != nil {
		return err
	}
	dataset.Users = append(dataset.Users, part.Users...)
	dataset.Products = append(dataset.Products, part.Products...)
	dataset.Categories = append(dataset.Categories, part.Categories...)
	dataset.Bookings = append(dataset.Bookings, part.Bookings...)
	return nil
}

// clone copies the record slices so the copy can be changed independently.
func (d *Dataset) clone() Dataset {
	return Dataset{
		Users:      slices.Clone(d.Users),
		Products:   slices.Clone(d.Products),
		Categories: slices.Clone(d.Categories),
		Bookings:   slices.Clone(d.Bookings),
	}
}

// countProducts derives each category's product count from the products.
func (d *Dataset) countProducts() {
	counts := map[string]int{}
	for _, p := range d.Products {
		counts[p.CategoryID]++
	}
	for i := range d.Categories {
		d.Categories[i].ProductCount = counts[d.Categories[i].ID]
	}
}

// jsonValue round-trips v through encoding/json so the validator sees the
// same value types it would for a JSON document.
func jsonValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var (
	schemaMu sync.Mutex
	schemas  = map[string]*jsonschema.Schema{}
)

func compiledSchema(name string) (*jsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()
	if schema, ok := schemas[name]; ok {
		return schema, nil
	}
	data, err := embeddedFixtures.ReadFile("fixtures/schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("console: load schema %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("console: add schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("console: compile schema %s: %w", name, err)
	}
	schemas[name] = schema
	return schema, nil
}
