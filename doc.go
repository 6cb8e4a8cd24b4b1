// Package classlayer provides the layered classloader a build tool uses to
// execute user code (tests and application runs) inside the build process,
// while keeping the dependency classpath loaded and cached between task
// runs and reloading only the frequently changing project classes.
//
// A Pool owns at most one idle dependency-layer loader for a given
// dependency classpath and parent. Each task checks out a TaskLoader,
// layered on top of the dependency loader, over the task's own dynamic
// classpath; closing the TaskLoader returns its parent to the pool, which
// either keeps it warm for reuse or closes it if a reflective lookup
// crossed the layer boundary and left it unsafe to reuse.
//
// # Basic usage
//
//	import "github.com/classlayer/classlayer"
//
//	pool, err := classlayer.NewPool(dependencyClassPath, rootParent)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
//
//	task, err := pool.Checkout(taskClassPath, tempDir)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer task.Close()
//
//	class, err := task.LoadClass("dep.Foo", true)
//
// # Native libraries
//
// Every loader stages native libraries on demand: a logical name is mapped
// to a platform filename, resolved against CLASSLAYER_LIBRARY_PATH (or the
// search path configured via WithNativeSearchPath), and copied into the
// task's temp directory by TaskLoader.FindNativeLibrary:
//
//	libPath, err := task.FindNativeLibrary("sqlite3")
//
// Staged files are tracked by a process-wide registry and deleted on
// SIGINT/SIGTERM or an explicit call to Shutdown.
package classlayer
