package testing

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/onsi/gomega"
)

// WAVFileContents produces a small but properly formed WAV file,
// one channel of silence at 44.1kHz
func WAVFileContents() []byte {
	file := ExpectSuccess(os.CreateTemp("", "fixture-*.wav"))
	defer os.Remove(file.Name())

	encoder := wav.NewEncoder(file, 44100, 16, 1, 1)

	buffer := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  44100,
		},
		Data:           make([]int, 441),
		SourceBitDepth: 16,
	}

	err := encoder.Write(buffer)
	gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())

	err = encoder.Close()
	gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())

	err = file.Close()
	gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())

	return ExpectSuccess(os.ReadFile(file.Name()))
}
