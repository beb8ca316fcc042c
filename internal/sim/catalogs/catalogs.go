package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type Catalogs struct {
	Machines MachineCatalog
	Storage  StorageTypeCatalog
	Items    ItemCatalog
}

type MachineCatalog struct {
	ByID   map[string]MachineDef
	Digest string
}

// MachineDef is immutable after registration. UI preserves declaration order.
type MachineDef struct {
	ID               string
	PersistentEntity bool
	UpdateChannel    string
	UI               []UIElement
}

func (d MachineDef) HasUI() bool { return len(d.UI) > 0 }

type StorageTypeCatalog struct {
	ByID   map[string]StorageTypeDef
	Digest string
}

type StorageTypeDef struct {
	ID          string `json:"id"`
	Color       string `json:"color"`
	DisplayName string `json:"display_name"`
}

type ItemCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]ItemDef
	PaletteDigest string
	DefsDigest    string
}

type ItemDef struct {
	ID   string `json:"id"`
	Kind string `json:"kind"` // "MATERIAL","TOOL","FOOD","UI"
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadItems(filepath.Join(configDir, "items.json"), &c.Items); err != nil {
		return nil, err
	}
	if err := loadStorageTypes(filepath.Join(configDir, "storage_types.json"), &c.Storage); err != nil {
		return nil, err
	}
	if err := loadMachines(filepath.Join(configDir, "machines.json"), &c.Machines, &c.Items); err != nil {
		return nil, err
	}

	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadItems(path string, out *ItemCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []ItemDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("items.json: %w", err)
	}
	out.Defs = map[string]ItemDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("items.json: empty id")
		}
		out.Defs[d.ID] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func loadStorageTypes(path string, out *StorageTypeCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []StorageTypeDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("storage_types.json: %w", err)
	}
	out.ByID = map[string]StorageTypeDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("storage_types.json: empty id")
		}
		if d.DisplayName == "" {
			return fmt.Errorf("storage_types.json: %s: missing display_name", d.ID)
		}
		out.ByID[d.ID] = d
	}
	return nil
}

func loadMachines(path string, out *MachineCatalog, items *ItemCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []machineDefJSON
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("machines.json: %w", err)
	}
	out.ByID = map[string]MachineDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("machines.json: empty id")
		}
		md, err := d.resolve(items)
		if err != nil {
			return fmt.Errorf("machines.json: %s: %w", d.ID, err)
		}
		out.ByID[md.ID] = md
	}
	return nil
}
