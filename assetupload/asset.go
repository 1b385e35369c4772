package assetupload

import (
	"os"
	"path/filepath"
)

// ReadLocalAsset reads the file at path into memory.
func ReadLocalAsset(path string) (LocalAsset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LocalAsset{}, err
	}

	return LocalAsset{
		FileName: filepath.Base(path),
		Data:     data,
	}, nil
}
