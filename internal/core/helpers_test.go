package core

// notFoundSource is a ModuleSource stub that never resolves a name, used by
// tests that need a non-nil Parent without exercising real plugin loading.
type notFoundSource struct{}

func (notFoundSource) Load(name string) (*LoadedClass, error) {
	return nil, ErrClassNotFound
}

func testLoaderConfig() LoaderConfig {
	return LoaderConfig{Parent: notFoundSource{}}
}

func testPoolConfig() PoolConfig {
	return PoolConfig{
		LoaderConfig:        testLoaderConfig(),
		DependencyClassPath: ClassPath{"dep"},
	}
}
