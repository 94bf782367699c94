// Package storage содержит локальное хранилище состояния клиента.
//
// Хранилище повторяет контракт браузерного localStorage: значение по ключу
// хранится целиком как один JSON-документ, запись заменяет предыдущее
// значение без слияния (last write wins).
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound возвращается, если по ключу нет сохранённого значения.
var ErrNotFound = errors.New("storage: key not found")

// Backend описывает контракт хранилища ключ-документ.
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// FileBackend хранит каждый ключ в отдельном JSON-файле каталога состояния.
type FileBackend struct {
	dir string
}

// NewFileBackend создаёт файловое хранилище в указанном каталоге.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

// Get возвращает сохранённый документ по ключу.
func (b *FileBackend) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(b.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Set атомарно записывает документ по ключу через временный файл.
func (b *FileBackend) Set(key string, value []byte) error {
	tmp, err := os.CreateTemp(b.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", key, err)
	}

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), b.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

// Delete удаляет документ по ключу. Отсутствие ключа не является ошибкой.
func (b *FileBackend) Delete(key string) error {
	if err := os.Remove(b.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, key+".json")
}

// MemBackend хранит документы в памяти. Используется в тестах и как
// деградация при недоступной файловой системе.
type MemBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemBackend создаёт пустое хранилище в памяти.
func NewMemBackend() *MemBackend {
	return &MemBackend{data: make(map[string][]byte)}
}

// Get возвращает сохранённый документ по ключу.
func (b *MemBackend) Get(key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

// Set записывает документ по ключу.
func (b *MemBackend) Set(key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	b.data[key] = cp
	return nil
}

// Delete удаляет документ по ключу.
func (b *MemBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	return nil
}
