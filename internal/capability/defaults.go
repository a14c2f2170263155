package capability

const (
	nircmdPath     = "C:/Windows/nircmd.exe"
	svclPath       = "C:/Windows/svcl.exe"
	powershell     = "powershell"
	personalizeKey = `HKCU:\Software\Microsoft\Windows\CurrentVersion\Themes\Personalize`
)

var psFlags = []string{"-NoProfile", "-NonInteractive", "-Command"}

// ps builds a PowerShell invocation. Extra arguments reach the script as
// $args and are never spliced into the script text.
func ps(name, script string, output Output, extra ...string) Provider {
	args := append(append(append([]string{}, psFlags...), script), extra...)

	return Provider{
		Name:    name,
		Kind:    KindShell,
		Command: powershell,
		Args:    args,
		Output:  output,
	}
}

// Windows returns the registry for a Windows host: NirSoft helpers for
// audio and media keys, PowerShell/WMI for everything else.
func Windows() *Registry {
	nircmd := func(args ...string) Provider {
		return Provider{Name: "nircmd", Kind: KindHelper, Command: nircmdPath, Args: args}
	}

	media := nircmd("sendkeypress", PlaceholderKey)
	media.Keys = map[string]string{
		"playpause": "mediaplaypause",
		"next":      "medianext",
		"prev":      "mediaprev",
		"stop":      "mediastop",
	}

	thermalZones := `Get-WmiObject MSAcpi_ThermalZoneTemperature -Namespace "root/wmi" | ` +
		`ForEach-Object { [PSCustomObject]@{ Zone = $_.InstanceName; TempK = $_.CurrentTemperature; ` +
		`TempC = [math]::Round(($_.CurrentTemperature / 10) - 273.15, 1) } } | ` +
		`Sort-Object TempC -Descending | Format-List`

	return &Registry{
		Platform: "windows",
		Providers: map[Capability][]Provider{
			VolumeSet:  {nircmd("setsysvolume", PlaceholderScaled)},
			MuteToggle: {nircmd("mutesysvolume", "2")},
			VolumeGet: {{
				Name:    "svcl",
				Kind:    KindHelper,
				Command: svclPath,
				Args:    []string{"/Stdout", "/GetPercent", "DefaultRenderDevice"},
				Output:  OutputPercent,
			}},
			MediaKey: {media},
			BrightnessSet: {ps("wmi-brightness",
				`& { (Get-WmiObject -Namespace root/WMI -Class WmiMonitorBrightnessMethods).WmiSetBrightness(1, [int]$args[0]) }`,
				OutputNone, PlaceholderValue)},
			BrightnessGet: {ps("wmi-brightness",
				`(Get-WmiObject -Namespace root/WMI -Class WmiMonitorBrightness).CurrentBrightness`,
				OutputPercent)},
			ThemeRead: {ps("registry-theme",
				`(Get-ItemProperty -Path `+personalizeKey+` -Name AppsUseLightTheme).AppsUseLightTheme`,
				OutputFlag)},
			ThemeWrite: {ps("registry-theme",
				`& { Set-ItemProperty -Path `+personalizeKey+` -Name AppsUseLightTheme -Value ([int]$args[0]); `+
					`Set-ItemProperty -Path `+personalizeKey+` -Name SystemUsesLightTheme -Value ([int]$args[0]) }`,
				OutputNone, PlaceholderValue)},
			PowerShutdown: {{Name: "shutdown", Kind: KindHelper, Command: "shutdown", Args: []string{"/s", "/t", PlaceholderDelay}}},
			PowerRestart:  {{Name: "shutdown", Kind: KindHelper, Command: "shutdown", Args: []string{"/r", "/t", PlaceholderDelay}}},
			PowerSleep: {{
				Name:    "powrprof",
				Kind:    KindHelper,
				Command: "rundll32.exe",
				Args:    []string{"powrprof.dll,SetSuspendState", "0", "1", "0"},
			}},
			PowerHibernate: {{Name: "shutdown", Kind: KindHelper, Command: "shutdown", Args: []string{"/h"}}},

			QueryCPUUsage: {ps("perf-counter",
				`Get-Counter "\Processor(_Total)\% Processor Time" | Select-Object -ExpandProperty CounterSamples | Select-Object -ExpandProperty CookedValue`,
				OutputPercent)},
			QueryCPUTempZones: {ps("wmi-thermal-zones", thermalZones, OutputNone)},
			QueryCPUTempFirst: {ps("wmi-thermal-first",
				`Get-WmiObject MSAcpi_ThermalZoneTemperature -Namespace "root/wmi" | Select-Object -First 1 -ExpandProperty CurrentTemperature`,
				OutputNone)},
			QueryCPUTempMax: {ps("wmi-thermal-max",
				`Get-WmiObject MSAcpi_ThermalZoneTemperature -Namespace "root/wmi" | ForEach-Object { ($_.CurrentTemperature / 10) - 273.15 } | `+
					`Where-Object { $_ -gt 25 -and $_ -lt 100 } | Sort-Object -Descending | Select-Object -First 1`,
				OutputNone)},
			QueryRAMUsage: {ps("wmi-memory",
				`$mem = Get-WmiObject -Class Win32_OperatingSystem; [math]::Round(($mem.TotalVisibleMemorySize - $mem.FreePhysicalMemory) / $mem.TotalVisibleMemorySize * 100, 1)`,
				OutputPercent)},
			QueryBattery: {ps("wmi-battery",
				`Get-WmiObject -Class Win32_Battery | Select-Object -ExpandProperty EstimatedChargeRemaining`,
				OutputPercent)},
			QueryGPUUsage: {nvidiaSMI("utilization.gpu")},
			QueryGPUTemp:  {nvidiaSMI("temperature.gpu")},
		},
		VendorPaths: []string{
			"C:/Program Files/NVIDIA Corporation/NVSMI/nvidia-smi.exe",
			"C:/Windows/System32/nvidia-smi.exe",
		},
	}
}

// Linux returns the registry for a Linux desktop: PulseAudio/PipeWire via
// pactl, MPRIS via playerctl, backlight via brightnessctl and systemd for
// power transitions. There is no portable theme flag, so theme toggling is
// reported unavailable.
func Linux() *Registry {
	pactl := func(output Output, args ...string) Provider {
		return Provider{Name: "pactl", Kind: KindHelper, Command: "pactl", Args: args, Output: output}
	}
	brightnessctl := func(output Output, args ...string) Provider {
		return Provider{Name: "brightnessctl", Kind: KindHelper, Command: "brightnessctl", Args: args, Output: output}
	}
	systemctl := func(args ...string) Provider {
		return Provider{Name: "systemctl", Kind: KindHelper, Command: "systemctl", Args: args}
	}
	delayed := func(unit string) Provider {
		return Provider{
			Name:    "systemd-run",
			Kind:    KindHelper,
			Command: "systemd-run",
			Args:    []string{"--on-active=" + PlaceholderDelay + "s", "systemctl", unit},
		}
	}

	return &Registry{
		Platform: "linux",
		Providers: map[Capability][]Provider{
			VolumeSet:  {pactl(OutputNone, "set-sink-volume", "@DEFAULT_SINK@", PlaceholderValue+"%")},
			VolumeGet:  {pactl(OutputEmbeddedPercent, "get-sink-volume", "@DEFAULT_SINK@")},
			MuteToggle: {pactl(OutputNone, "set-sink-mute", "@DEFAULT_SINK@", "toggle")},
			MediaKey: {{
				Name:    "playerctl",
				Kind:    KindHelper,
				Command: "playerctl",
				Args:    []string{PlaceholderKey},
				Keys: map[string]string{
					"playpause": "play-pause",
					"next":      "next",
					"prev":      "previous",
					"stop":      "stop",
				},
			}},
			BrightnessSet:  {brightnessctl(OutputNone, "set", PlaceholderValue+"%")},
			BrightnessGet:  {brightnessctl(OutputEmbeddedPercent, "-m", "info")},
			PowerShutdown:  {delayed("poweroff")},
			PowerRestart:   {delayed("reboot")},
			PowerSleep:     {systemctl("suspend")},
			PowerHibernate: {systemctl("hibernate")},
			QueryGPUUsage:  {nvidiaSMI("utilization.gpu")},
			QueryGPUTemp:   {nvidiaSMI("temperature.gpu")},
		},
		VendorPaths: []string{
			"/usr/bin/nvidia-smi",
			"/usr/local/bin/nvidia-smi",
			"/opt/nvidia/bin/nvidia-smi",
			"nvidia-smi",
		},
	}
}

// nvidiaSMI queries one field. Command is empty: the vendor binary is
// located from Registry.VendorPaths at snapshot time.
func nvidiaSMI(field string) Provider {
	return Provider{
		Name:   "nvidia-smi",
		Kind:   KindVendor,
		Args:   []string{"--query-gpu=" + field, "--format=csv,noheader,nounits"},
		Output: OutputNone,
	}
}
