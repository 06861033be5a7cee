package res

// AboutContent contains the Markdown content for the About dialog.
// This is maintained separately for easy updates.
const AboutContent = `A dot-matrix audio spectrum overlay built with Go and Fyne.

**Sources:**
- System audio through a loopback or monitor device
- Microphone and any other capture device
- Audio files (MP3, WAV, FLAC, OGG)
- A built-in demo signal when nothing else is available

**In OBS:** add the window as a Window Capture source and key out black.

**Shortcuts:** Ctrl+H controls, Ctrl+S system, Ctrl+M microphone,
Ctrl+D demo, Ctrl+O open file, Ctrl+R refresh devices.
`
