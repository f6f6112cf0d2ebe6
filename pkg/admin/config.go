package admin

// Config holds the settings cmd/bufbtreeadmin parses from flags before
// constructing a Server, mirroring the flat Config struct the reference
// codebase's pkg/server uses for the same purpose.
type Config struct {
	Host string // admin HTTP host address
	Port int    // admin HTTP port

	DataDir        string // directory holding the relation and index files
	BufferFrames   int    // buffer manager pool size, in frames
	RelationName   string // base relation file name, under DataDir
	AttrByteOffset int32  // byte offset of the indexed int32 attribute

	LoadDemoData    bool // populate a fresh relation with demo tuples
	DemoRecordCount int  // how many demo tuples to insert, if LoadDemoData
}

// DefaultConfig returns the defaults cmd/bufbtreeadmin starts from before
// flag overrides are applied.
func DefaultConfig() *Config {
	return &Config{
		Host:            "localhost",
		Port:            8080,
		DataDir:         "./data",
		BufferFrames:    256,
		RelationName:    "demo",
		AttrByteOffset:  0,
		LoadDemoData:    true,
		DemoRecordCount: 1000,
	}
}
