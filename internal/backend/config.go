package backend

import (
	"fmt"

	"keuangan/internal/config"
)

// FromAppConfig converts the application config to the primary store's
// backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	return fromAppConfig(appConfig, appConfig.DataBackend)
}

// MirrorFromAppConfig builds the config of the store the mirror worker
// copies rows into.
func MirrorFromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	if appConfig.MirrorBackend == "" {
		return Config{}, fmt.Errorf("mirror backend is not configured")
	}
	return fromAppConfig(appConfig, appConfig.MirrorBackend)
}

func fromAppConfig(appConfig *config.Config, name string) (Config, error) {
	backendType := BackendType(name)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", name)
	}

	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		XLSXPath:   appConfig.XLSXPath,
		XLSXSheet:  appConfig.XLSXSheet,
		XLSXCreate: appConfig.XLSXCreate,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}

	case XLSXBackend:
		if c.XLSXPath == "" {
			return fmt.Errorf("XLSX path is required for xlsx backend")
		}

	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets backend")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			return fmt.Errorf("service account credentials are required for sheets backend")
		}

	case MemoryBackend:
		// Memory backend doesn't require additional validation
	}

	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, SheetsBackend, XLSXBackend, MemoryBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	strings := make([]string, len(types))
	for i, t := range types {
		strings[i] = t.String()
	}
	return strings
}
