package persistence

import (
	"path/filepath"
	"testing"

	"github.com/BiasedControls/snpx-client/internal/sim/model"
)

// BenchmarkMemoryStorage_OnWrite benchmarks the OnWrite hook for MemoryStorage.
func BenchmarkMemoryStorage_OnWrite(b *testing.B) {
	ms := NewMemoryStorage()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ms.OnWrite(model.TableRegisters, 10, 1)
	}
}

func BenchmarkFileStorage_OnWrite(b *testing.B) {
	tmpDir := b.TempDir()
	path := filepath.Join(tmpDir, "bench_file.bin")
	fs := NewFileStorage(path)
	image, err := fs.Load()
	if err != nil {
		b.Fatalf("Failed to load file storage: %v", err)
	}
	defer fs.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		image.Registers[10] = uint16(i)
		fs.OnWrite(model.TableRegisters, 10, 1)
	}
}

// BenchmarkMmapStorage_OnWrite benchmarks the OnWrite hook for MmapStorage (msync).
func BenchmarkMmapStorage_OnWrite(b *testing.B) {
	tmpDir := b.TempDir()
	path := filepath.Join(tmpDir, "bench_mmap.bin")
	ms := NewMmapStorage(path)

	image, err := ms.Load()
	if err != nil {
		b.Fatalf("Failed to load mmap storage: %v", err)
	}
	defer ms.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		image.Registers[10] = uint16(i)
		ms.OnWrite(model.TableRegisters, 10, 1)
	}
}

// BenchmarkImage_Write benchmarks the pure in-memory register write (baseline).
func BenchmarkImage_Write(b *testing.B) {
	m := model.NewImage()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Registers[10] = uint16(i)
	}
}
