package assetupload

import (
	"crypto/md5"
	"encoding/hex"
)

// Checksum returns the hex encoded MD5 digest App Store Connect verifies the upload against.
func Checksum(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
