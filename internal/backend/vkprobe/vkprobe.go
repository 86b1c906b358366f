// Package vkprobe enumerates Vulkan adapters and picks the preferred one.
// It only inspects the system; no device is created.
package vkprobe

import (
	"errors"
	"fmt"
	"sort"

	"mini-vox/internal/logging"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// ErrUnavailable is returned when no Vulkan loader or adapter is present.
var ErrUnavailable = errors.New("vkprobe: vulkan unavailable")

// DeviceType mirrors the Vulkan physical device types.
type DeviceType int

const (
	TypeOther DeviceType = iota
	TypeIntegrated
	TypeDiscrete
	TypeVirtual
	TypeCPU
)

func (t DeviceType) String() string {
	switch t {
	case TypeIntegrated:
		return "integrated"
	case TypeDiscrete:
		return "discrete"
	case TypeVirtual:
		return "virtual"
	case TypeCPU:
		return "cpu"
	default:
		return "other"
	}
}

// Rank orders device types by preference, higher is better.
func (t DeviceType) Rank() int {
	switch t {
	case TypeDiscrete:
		return 4
	case TypeIntegrated:
		return 3
	case TypeVirtual:
		return 2
	case TypeCPU:
		return 1
	default:
		return 0
	}
}

func fromVk(t vk.PhysicalDeviceType) DeviceType {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return TypeIntegrated
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return TypeDiscrete
	case vk.PhysicalDeviceTypeVirtualGpu:
		return TypeVirtual
	case vk.PhysicalDeviceTypeCpu:
		return TypeCPU
	default:
		return TypeOther
	}
}

// Version is a packed Vulkan version number.
type Version uint32

func (v Version) Major() uint32 { return uint32(v) >> 22 }
func (v Version) Minor() uint32 { return (uint32(v) >> 12) & 0x3ff }
func (v Version) Patch() uint32 { return uint32(v) & 0xfff }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

// Adapter describes one physical device.
type Adapter struct {
	Index         int
	Name          string
	Type          DeviceType
	APIVersion    Version
	DriverVersion uint32
	VendorID      uint32
	DeviceID      uint32
	GraphicsQueue bool
}

// Select returns the best adapter with a graphics queue: highest type rank,
// then the earliest enumerated.
func Select(adapters []Adapter) (Adapter, bool) {
	candidates := make([]Adapter, 0, len(adapters))
	for _, a := range adapters {
		if a.GraphicsQueue {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return Adapter{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Type.Rank() > candidates[j].Type.Rank()
	})
	return candidates[0], true
}

// Options controls loader setup.
type Options struct {
	// UseGLFW resolves the loader through GLFW; glfw.Init must have run.
	UseGLFW bool
}

var loaderReady bool

func initLoader(opts Options) error {
	if loaderReady {
		return nil
	}
	if opts.UseGLFW {
		if !glfw.VulkanSupported() {
			return fmt.Errorf("glfw reports no vulkan loader: %w", ErrUnavailable)
		}
		vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	} else if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := vk.Init(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	loaderReady = true
	return nil
}

// Probe creates a throwaway instance and lists every adapter. Not safe for
// concurrent use.
func Probe(opts Options) ([]Adapter, error) {
	if err := initLoader(opts); err != nil {
		return nil, err
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   "mini-vox\x00",
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        "mini-vox\x00",
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.MakeVersion(1, 0, 0),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &appInfo,
	}
	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &instance); res != vk.Success {
		return nil, fmt.Errorf("vkCreateInstance failed: %d", res)
	}
	defer vk.DestroyInstance(instance, nil)
	if err := vk.InitInstance(instance); err != nil {
		return nil, fmt.Errorf("init instance: %w", err)
	}

	var count uint32
	if res := vk.EnumeratePhysicalDevices(instance, &count, nil); res != vk.Success {
		return nil, fmt.Errorf("vkEnumeratePhysicalDevices failed: %d", res)
	}
	if count == 0 {
		return nil, fmt.Errorf("no physical devices: %w", ErrUnavailable)
	}
	devices := make([]vk.PhysicalDevice, count)
	if res := vk.EnumeratePhysicalDevices(instance, &count, devices); res != vk.Success {
		return nil, fmt.Errorf("vkEnumeratePhysicalDevices failed: %d", res)
	}

	adapters := make([]Adapter, 0, count)
	for i, dev := range devices[:count] {
		var props vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(dev, &props)
		props.Deref()

		a := Adapter{
			Index:         i,
			Name:          vk.ToString(props.DeviceName[:]),
			Type:          fromVk(props.DeviceType),
			APIVersion:    Version(props.ApiVersion),
			DriverVersion: props.DriverVersion,
			VendorID:      props.VendorID,
			DeviceID:      props.DeviceID,
			GraphicsQueue: hasGraphicsQueue(dev),
		}
		logging.Logger().Debug("vulkan adapter",
			"index", i, "name", a.Name, "type", a.Type.String(), "api", a.APIVersion.String())
		adapters = append(adapters, a)
	}
	return adapters, nil
}

func hasGraphicsQueue(dev vk.PhysicalDevice) bool {
	var n uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(dev, &n, nil)
	families := make([]vk.QueueFamilyProperties, n)
	vk.GetPhysicalDeviceQueueFamilyProperties(dev, &n, families)
	for _, qf := range families {
		qf.Deref()
		if qf.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			return true
		}
	}
	return false
}
