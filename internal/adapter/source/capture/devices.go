package capture

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/ports"
)

var virtualMarkers = []string{"cable", "stereo mix", "voicemeeter", "virtual", "loopback", "blackhole", ".monitor", "monitor of"}

var micMarkers = []string{"mic", "microphone"}

// Classify sorts a device label into virtual, microphone or other.
// Virtual devices carry system audio and are the recommended system source.
func Classify(label string) domain.DeviceClass {
	l := strings.ToLower(label)
	for _, m := range virtualMarkers {
		if strings.Contains(l, m) {
			return domain.DeviceVirtual
		}
	}
	for _, m := range micMarkers {
		if strings.Contains(l, m) {
			return domain.DeviceMicrophone
		}
	}
	return domain.DeviceOther
}

// ListDevices enumerates capture devices on the current platform.
func (o *Opener) ListDevices(ctx context.Context) ([]domain.DeviceInfo, error) {
	bin := ""
	if o.goos != "linux" {
		var err error
		bin, err = o.lookPath(o.ffmpeg)
		if err != nil {
			return nil, domain.NewSourceError("list", domain.SourceDevice, "", domain.Unavailable(errFFmpegNotFound))
		}
	}
	devices, err := o.listDevices(ctx, bin)
	if err != nil {
		return nil, domain.NewSourceError("list", domain.SourceDevice, "", err)
	}
	o.logger.Debug("devices listed", "count", len(devices))
	return devices, nil
}

func (o *Opener) listDevices(ctx context.Context, ffmpeg string) ([]domain.DeviceInfo, error) {
	switch o.goos {
	case "linux":
		out, err := o.runList(ctx, "pactl", "list", "short", "sources")
		if err != nil {
			return nil, domain.Unavailable(fmt.Errorf("pactl: %w", err))
		}
		return parsePactl(out), nil
	case "darwin":
		// ffmpeg exits non-zero after printing the list; only the output matters.
		out, _ := o.runList(ctx, ffmpeg, "-hide_banner", "-f", "avfoundation", "-list_devices", "true", "-i", "")
		return parseAVFoundation(out), nil
	case "windows":
		out, _ := o.runList(ctx, ffmpeg, "-hide_banner", "-list_devices", "true", "-f", "dshow", "-i", "dummy")
		return parseDShow(out), nil
	default:
		return nil, domain.Unavailable(fmt.Errorf("device listing is not supported on %s", o.goos))
	}
}

// parsePactl reads `pactl list short sources`: index, name, driver, format, state.
func parsePactl(out []byte) []domain.DeviceInfo {
	var devices []domain.DeviceInfo
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Split(sc.Text(), "\t")
		if len(fields) < 2 || fields[1] == "" {
			continue
		}
		name := fields[1]
		devices = append(devices, domain.DeviceInfo{ID: name, Label: name, Class: Classify(name)})
	}
	return devices
}

var avfDevice = regexp.MustCompile(`\]\s+\[(\d+)\]\s+(.+)$`)

// parseAVFoundation reads the audio section of ffmpeg's avfoundation device list.
func parseAVFoundation(out []byte) []domain.DeviceInfo {
	var devices []domain.DeviceInfo
	inAudio := false
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.Contains(line, "AVFoundation audio devices"):
			inAudio = true
			continue
		case strings.Contains(line, "AVFoundation video devices"):
			inAudio = false
			continue
		}
		if !inAudio {
			continue
		}
		if m := avfDevice.FindStringSubmatch(line); m != nil {
			label := strings.TrimSpace(m[2])
			devices = append(devices, domain.DeviceInfo{ID: m[1], Label: label, Class: Classify(label)})
		}
	}
	return devices
}

var dshowDevice = regexp.MustCompile(`"([^"]+)"\s+\(audio\)`)

// parseDShow reads ffmpeg's dshow device list, keeping audio devices.
func parseDShow(out []byte) []domain.DeviceInfo {
	var devices []domain.DeviceInfo
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if m := dshowDevice.FindStringSubmatch(sc.Text()); m != nil {
			devices = append(devices, domain.DeviceInfo{ID: m[1], Label: m[1], Class: Classify(m[1])})
		}
	}
	return devices
}

func combinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, err
	}
	return out, err
}

var _ ports.DeviceLister = (*Opener)(nil)
