package layout

// Built-in declarations mirror the per-architecture bindings for the
// types the verifier ships checks for.

// TimespecDecl declares struct timespec.
func TimespecDecl() StructDecl {
	return StructDecl{
		Name:    "timespec",
		CType:   "struct timespec",
		Headers: []string{"time.h"},
		Fields: []FieldDecl{
			{Name: "tv_sec", Type: "time_t"},
			{Name: "tv_nsec", Type: "long"},
		},
	}
}

// StatDecl declares struct stat for the target's kernel ABI family.
func StatDecl(t Target) StructDecl {
	decl := StructDecl{
		Name:    "stat",
		CType:   "struct stat",
		Headers: []string{"sys/stat.h"},
	}
	switch t.GOARCH {
	case "amd64":
		decl.Fields = []FieldDecl{
			{Name: "st_dev", Type: "dev_t"},
			{Name: "st_ino", Type: "ino_t"},
			{Name: "st_nlink", Type: "nlink_t"},
			{Name: "st_mode", Type: "mode_t"},
			{Name: "st_uid", Type: "uid_t"},
			{Name: "st_gid", Type: "gid_t"},
			{Name: "__pad0", Type: "unsigned int", Private: true},
			{Name: "st_rdev", Type: "dev_t"},
			{Name: "st_size", Type: "off_t"},
			{Name: "st_blksize", Type: "blksize_t"},
			{Name: "st_blocks", Type: "blkcnt_t"},
			{Name: "st_atim", Type: "timespec"},
			{Name: "st_mtim", Type: "timespec"},
			{Name: "st_ctim", Type: "timespec"},
			{Name: "__unused", Type: "long", Count: 3, Private: true},
		}
	case "arm", "386":
		// 32-bit glibc with _FILE_OFFSET_BITS=64: the truncated inode
		// number sits up front, the full one at the end.
		decl.Fields = []FieldDecl{
			{Name: "st_dev", Type: "dev_t"},
			{Name: "__st_dev_padding", Type: "int", Private: true},
			{Name: "__st_ino_truncated", Type: "int", Private: true},
			{Name: "st_mode", Type: "mode_t"},
			{Name: "st_nlink", Type: "nlink_t"},
			{Name: "st_uid", Type: "uid_t"},
			{Name: "st_gid", Type: "gid_t"},
			{Name: "st_rdev", Type: "dev_t"},
			{Name: "__st_rdev_padding", Type: "int", Private: true},
			{Name: "st_size", Type: "off_t"},
			{Name: "st_blksize", Type: "blksize_t"},
			{Name: "st_blocks", Type: "blkcnt_t"},
			{Name: "st_atim", Type: "timespec"},
			{Name: "st_mtim", Type: "timespec"},
			{Name: "st_ctim", Type: "timespec"},
			{Name: "st_ino", Type: "ino_t"},
		}
	default:
		// asm-generic layout (arm64, riscv64, loong64)
		decl.Fields = []FieldDecl{
			{Name: "st_dev", Type: "dev_t"},
			{Name: "st_ino", Type: "ino_t"},
			{Name: "st_mode", Type: "mode_t"},
			{Name: "st_nlink", Type: "nlink_t"},
			{Name: "st_uid", Type: "uid_t"},
			{Name: "st_gid", Type: "gid_t"},
			{Name: "st_rdev", Type: "dev_t"},
			{Name: "__pad1", Type: "unsigned long", Private: true},
			{Name: "st_size", Type: "off_t"},
			{Name: "st_blksize", Type: "blksize_t"},
			{Name: "__pad2", Type: "int", Private: true},
			{Name: "st_blocks", Type: "blkcnt_t"},
			{Name: "st_atim", Type: "timespec"},
			{Name: "st_mtim", Type: "timespec"},
			{Name: "st_ctim", Type: "timespec"},
			{Name: "__glibc_reserved", Type: "int", Count: 2, Private: true},
		}
	}
	return decl
}

// BuiltinEngine returns an engine for t with every built-in declaration.
func BuiltinEngine(t Target) (*Engine, error) {
	e := New(t)
	if err := e.Declare(TimespecDecl(), StatDecl(t)); err != nil {
		return nil, err
	}
	return e, nil
}
