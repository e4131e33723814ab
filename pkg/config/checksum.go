package config

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"hash"
)

// NewHash 返回对应算法的 hash，none 或未知算法返回 nil
func (c Checksum) NewHash() hash.Hash {
	switch c {
	case ChecksumMD5:
		return md5.New()
	case ChecksumSHA1:
		return sha1.New()
	case ChecksumSHA256:
		return sha256.New()
	default:
		return nil
	}
}
