package objstore

import "strings"

// ObjectKey addresses a directory prefix or a concrete object inside a
// bucket as an ordered sequence of path segments.
type ObjectKey struct {
	Bucket string
	Path   []string
}

// KeyWithPrefix splits a slash-separated prefix into segments, dropping
// empty ones.
func KeyWithPrefix(bucket, prefix string) ObjectKey {
	var path []string
	for _, seg := range strings.Split(prefix, "/") {
		if seg != "" {
			path = append(path, seg)
		}
	}
	return ObjectKey{Bucket: bucket, Path: path}
}

// Equal reports whether both bucket and segment sequence match exactly.
func (k ObjectKey) Equal(other ObjectKey) bool {
	if k.Bucket != other.Bucket || len(k.Path) != len(other.Path) {
		return false
	}
	for i := range k.Path {
		if k.Path[i] != other.Path[i] {
			return false
		}
	}
	return true
}

// Append returns a new key with one more trailing segment. The receiver's
// segment slice is not shared.
func (k ObjectKey) Append(name string) ObjectKey {
	path := make([]string, 0, len(k.Path)+1)
	path = append(path, k.Path...)
	path = append(path, name)
	return ObjectKey{Bucket: k.Bucket, Path: path}
}

// Parent returns the key with the last segment removed. The root key is its
// own parent.
func (k ObjectKey) Parent() ObjectKey {
	if len(k.Path) == 0 {
		return k
	}
	path := make([]string, len(k.Path)-1)
	copy(path, k.Path[:len(k.Path)-1])
	return ObjectKey{Bucket: k.Bucket, Path: path}
}

// IsRoot reports whether the key addresses the bucket root.
func (k ObjectKey) IsRoot() bool {
	return len(k.Path) == 0
}

// JoinedPath joins the segments with "/". With trailing true a non-empty
// path gets a trailing slash, the form the list API expects for prefixes.
func (k ObjectKey) JoinedPath(trailing bool) string {
	joined := strings.Join(k.Path, "/")
	if trailing && joined != "" {
		joined += "/"
	}
	return joined
}

// URI renders the key as an s3:// address.
func (k ObjectKey) URI() string {
	return "s3://" + k.Bucket + "/" + k.JoinedPath(false)
}
