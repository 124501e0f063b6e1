package config

const sampleConfig = `# subreader configuration

# Begin recognition immediately when the server starts.
auto_start = false

[capture]
# Seconds between recognition cycles.
interval_seconds = 1.0
# Capture backend. "native" uses the platform screenshot tool.
method = "native"

[capture.region]
# Screen rectangle to watch for subtitles.
x = 0
y = 0
width = 800
height = 100

[ocr]
# Recognition engine: "tesseract" (library) or "command" (tesseract CLI).
engine = "tesseract"
language = "eng"
# Results below this confidence are discarded.
confidence_threshold = 0.6
# Page segmentation mode. 7 treats the image as a single text line.
psm = 7
# Skip OCR entirely when the captured frame is visually unchanged.
frame_prefilter = true
max_hash_distance = 3
# tesseract_path = "/usr/local/bin/tesseract"

[ocr.preprocess]
enable = true
grayscale = true
# Fixed binarization threshold, used when auto_threshold is false.
threshold = 160
invert = false
# Compute the threshold per frame with Otsu's method.
auto_threshold = true
# Upscale factor applied before recognition. Helps with small fonts.
scale = 2.0

[tts]
# Speech engine: "gcloud" (Google Cloud Text-to-Speech) or "command" (offline).
engine = "gcloud"
voice = "en-US-Neural2-F"
language = "en-US"
speaking_rate = 1.0
pitch = 0.0
# Engine used when the primary fails to synthesize.
fallback_engine = "command"
# fallback_voice = ""
# credentials_file = "/path/to/service-account.json"

[server]
bind = ":8712"

[storage]
# Audio cache and recognition history live here. Empty uses the user cache dir.
# data_dir = ""

[log]
level = "info"
# "console" or "json"
format = "console"
# file = "subreader.log"
`
