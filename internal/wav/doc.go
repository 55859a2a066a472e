// Package wav serializes sample buffers into canonical RIFF/WAVE PCM
// containers and parses them back. The writer emits the classic 44-byte
// header (RIFF, fmt, data) with little-endian fields; the reader walks the
// chunk list and accepts 8- and 16-bit PCM.
package wav
