// Package mock contains gomock stubs for interfaces declared by this
// repository. They are regenerated by running "go generate" in this
// directory.
package mock

//go:generate go run go.uber.org/mock/mockgen -destination blockdevice.go -package mock github.com/buildbarn/bb-blockstream/pkg/blockdevice BlockDevice,BlockAddressableDevice
//go:generate go run go.uber.org/mock/mockgen -destination util.go -package mock github.com/buildbarn/bb-blockstream/pkg/util ErrorLogger
