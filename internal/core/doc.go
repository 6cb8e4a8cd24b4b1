// Package core provides the internal implementation of the layered
// classloader.
//
// The primary types are:
//   - [LoaderPool]: single-slot cache of an idle [DependencyLoader], checked
//     out as the parent of a fresh [TaskLoader] on each Checkout.
//   - [DependencyLoader]: the cacheable middle layer, with a reverse edge to
//     its current descendant TaskLoader and a one-way dirty flag.
//   - [TaskLoader]: the per-task bottom layer holding the dynamic classpath.
//   - [LoaderConfig] and [PoolConfig]: validated configuration structs.
package core
