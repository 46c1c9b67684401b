// Package devnum packs and unpacks Linux device numbers using the glibc
// dev_t encoding: a 32-bit major and a 32-bit minor number interleaved so
// that the historical 8:8 and 12:20 encodings keep their values.
//
//	bits  0-7   minor[0:8]
//	bits  8-19  major[0:12]
//	bits 20-43  minor[8:32]
//	bits 44-63  major[12:32]
package devnum

// Makedev combines major and minor into a dev_t.
func Makedev(major, minor uint32) uint64 {
	maj := uint64(major)
	mn := uint64(minor)
	dev := (mn & 0xff) | (maj&0xfff)<<8
	dev |= (mn &^ 0xff) << 12
	dev |= (maj &^ 0xfff) << 32
	return dev
}

// Major extracts the major number of dev.
func Major(dev uint64) uint32 {
	return uint32((dev>>8)&0xfff | (dev>>32)&^0xfff)
}

// Minor extracts the minor number of dev.
func Minor(dev uint64) uint32 {
	return uint32(dev&0xff | (dev>>12)&^0xff)
}

// Split is Major and Minor at once.
func Split(dev uint64) (major, minor uint32) {
	return Major(dev), Minor(dev)
}
