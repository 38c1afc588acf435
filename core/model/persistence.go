package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
)

// SaveModel はモデルをファイルに保存する
//
// model はエクスポートされたフィールドのみが保存される。
//
// 使用例:
//
//	p, _ := pipeline.Train(t, opts)
//	err := model.SaveModel(p, "model.gob")
func SaveModel(model interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.NewIOError("create model file", filename, err)
	}
	defer file.Close()

	if err := SaveModelToWriter(model, file); err != nil {
		return errors.Wrapf(err, "save model to %s", filename)
	}
	return nil
}

// LoadModel はファイルからモデルを読み込む
//
//	var p pipeline.Pipeline
//	err := model.LoadModel(&p, "model.gob")
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.NewIOError("open model file", filename, err)
	}
	defer file.Close()

	if err := LoadModelFromReader(model, file); err != nil {
		return errors.Wrapf(err, "load model from %s", filename)
	}
	return nil
}

// SaveModelToWriter はモデルをio.Writerに保存する
func SaveModelToWriter(model interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(model); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader はio.Readerからモデルを読み込む
func LoadModelFromReader(model interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(model); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}
