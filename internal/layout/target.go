package layout

import "runtime"

// Scalar is the size and alignment of a C scalar type, in bytes.
type Scalar struct {
	Size  int
	Align int
}

// Target describes the C ABI of one platform: pointer properties and the
// sizes of the scalar types and libc typedefs descriptors are written in.
type Target struct {
	Triple   string // e.g. "x86_64-linux-gnu"
	GOARCH   string
	Predef   string // compiler-predefined macro identifying the architecture
	PtrSize  int // bytes
	PtrAlign int // bytes
	// NarrowOffT is set when the native off_t is 32 bits unless
	// _FILE_OFFSET_BITS=64 is defined. Descriptors assume the wide ABI.
	NarrowOffT bool

	scalars map[string]Scalar
}

// Scalar returns the layout of a scalar type or libc typedef.
func (t Target) Scalar(name string) (Scalar, bool) {
	s, ok := t.scalars[name]
	return s, ok
}

// ScalarNames lists the scalar types the target knows.
func (t Target) ScalarNames() []string {
	names := make([]string, 0, len(t.scalars))
	for name := range t.scalars {
		names = append(names, name)
	}
	return names
}

// baseScalars builds the fundamental C types for a data model.
// word is sizeof(long) and sizeof(void*); align8 is the alignment of
// 64-bit integers.
func baseScalars(word, align8 int) map[string]Scalar {
	w := Scalar{Size: word, Align: word}
	q := Scalar{Size: 8, Align: align8}
	return map[string]Scalar{
		"char":               {1, 1},
		"signed char":        {1, 1},
		"unsigned char":      {1, 1},
		"short":              {2, 2},
		"unsigned short":     {2, 2},
		"int":                {4, 4},
		"unsigned int":       {4, 4},
		"long":               w,
		"unsigned long":      w,
		"long long":          q,
		"unsigned long long": q,
		"void*":              w,
		"size_t":             w,
		"ssize_t":            w,
		"int8_t":             {1, 1},
		"uint8_t":            {1, 1},
		"int16_t":            {2, 2},
		"uint16_t":           {2, 2},
		"int32_t":            {4, 4},
		"uint32_t":           {4, 4},
		"int64_t":            q,
		"uint64_t":           q,
	}
}

func withTypedefs(base map[string]Scalar, defs map[string]string) map[string]Scalar {
	for name, underlying := range defs {
		base[name] = base[underlying]
	}
	return base
}

// X86_64LinuxGNU is the LP64 x86-64 glibc target.
func X86_64LinuxGNU() Target {
	return Target{
		Triple:   "x86_64-linux-gnu",
		GOARCH:   "amd64",
		Predef:   "__x86_64__",
		PtrSize:  8,
		PtrAlign: 8,
		scalars: withTypedefs(baseScalars(8, 8), map[string]string{
			"dev_t":     "unsigned long",
			"ino_t":     "unsigned long",
			"nlink_t":   "unsigned long",
			"mode_t":    "unsigned int",
			"uid_t":     "unsigned int",
			"gid_t":     "unsigned int",
			"off_t":     "long",
			"blksize_t": "long",
			"blkcnt_t":  "long",
			"time_t":    "long",
		}),
	}
}

// AArch64LinuxGNU is the LP64 arm64 glibc target (asm-generic stat).
func AArch64LinuxGNU() Target {
	return Target{
		Triple:   "aarch64-linux-gnu",
		GOARCH:   "arm64",
		Predef:   "__aarch64__",
		PtrSize:  8,
		PtrAlign: 8,
		scalars: withTypedefs(baseScalars(8, 8), map[string]string{
			"dev_t":     "unsigned long",
			"ino_t":     "unsigned long",
			"nlink_t":   "unsigned int",
			"mode_t":    "unsigned int",
			"uid_t":     "unsigned int",
			"gid_t":     "unsigned int",
			"off_t":     "long",
			"blksize_t": "int",
			"blkcnt_t":  "long",
			"time_t":    "long",
		}),
	}
}

// ARMLinuxGNUEABIHF is the ILP32 arm glibc target with a 64-bit off_t.
func ARMLinuxGNUEABIHF() Target {
	return ilp32Target("arm-linux-gnueabihf", "arm", "__arm__", 8)
}

// I686LinuxGNU is the ILP32 x86 glibc target with a 64-bit off_t.
// 64-bit integers are only 4-byte aligned inside structs.
func I686LinuxGNU() Target {
	return ilp32Target("i686-linux-gnu", "386", "__i386__", 4)
}

func ilp32Target(triple, goarch, predef string, align8 int) Target {
	return Target{
		Triple:     triple,
		GOARCH:     goarch,
		Predef:     predef,
		PtrSize:    4,
		PtrAlign:   4,
		NarrowOffT: true,
		scalars: withTypedefs(baseScalars(4, align8), map[string]string{
			"dev_t":     "unsigned long long",
			"ino_t":     "unsigned long long",
			"nlink_t":   "unsigned int",
			"mode_t":    "unsigned int",
			"uid_t":     "unsigned int",
			"gid_t":     "unsigned int",
			"off_t":     "long long",
			"blksize_t": "long",
			"blkcnt_t":  "long long",
			"time_t":    "long",
		}),
	}
}

// Targets returns every known target.
func Targets() []Target {
	return []Target{X86_64LinuxGNU(), AArch64LinuxGNU(), ARMLinuxGNUEABIHF(), I686LinuxGNU()}
}

// TargetByTriple finds a known target by triple or GOARCH.
func TargetByTriple(name string) (Target, bool) {
	for _, t := range Targets() {
		if t.Triple == name || t.GOARCH == name {
			return t, true
		}
	}
	return Target{}, false
}

// HostTarget returns the target matching the running process, if known.
func HostTarget() (Target, bool) {
	if runtime.GOOS != "linux" {
		return Target{}, false
	}
	return TargetByTriple(runtime.GOARCH)
}
