//go:build !windows

package javaguard

// NewPlatformRegistryReader returns nil outside Windows: RegistryStrategy
// is only ever composed into the Windows strategy list by ComposeForOS,
// so no reader is needed elsewhere.
func NewPlatformRegistryReader() RegistryReader {
	return nil
}
